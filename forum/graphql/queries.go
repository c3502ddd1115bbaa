package graphql

const postFields = `
	_id
	slug
	title
	pageUrl
	postedAt
	baseScore
	voteCount
	commentCount
	contents {
		wordCount
		plaintextDescription
	}
	user {
		displayName
		slug
		username
	}
`

const postsQuery = `
query Posts($view: String, $limit: Int, $offset: Int, $after: String, $af: Boolean) {
	posts(input: {
		terms: {
			view: $view
			limit: $limit
			offset: $offset
			after: $after
			af: $af
		}
	}) {
		results {` + postFields + `}
	}
}
`

const articleByIdQuery = `
query PostById($id: String) {
	post(input: { selector: { _id: $id } }) {
		result {` + postFields + `
			htmlBody
		}
	}
}
`

const articleBySlugQuery = `
query PostBySlug($slug: String) {
	post(input: { selector: { slug: $slug } }) {
		result {` + postFields + `
			htmlBody
		}
	}
}
`
