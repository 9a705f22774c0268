package ghdiscuss

import "context"

const repositoryIDQuery = `
query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    id
  }
}`

func (c *httpClient) RepositoryID(ctx context.Context, owner, name string) (string, error) {
	var out struct {
		Repository struct {
			ID string `json:"id"`
		} `json:"repository"`
	}
	err := c.do(ctx, "ghdiscuss.repository_id", repositoryIDQuery,
		map[string]any{"owner": owner, "name": name}, &out)
	if err != nil {
		return "", err
	}
	return out.Repository.ID, nil
}

const recentDiscussionsQuery = `
query($owner: String!, $name: String!, $first: Int!) {
  repository(owner: $owner, name: $name) {
    discussions(first: $first, orderBy: {field: CREATED_AT, direction: DESC}) {
      nodes {
        id
        number
        title
        url
      }
    }
  }
}`

func (c *httpClient) RecentDiscussions(ctx context.Context, owner, name string, first int) ([]Discussion, error) {
	var out struct {
		Repository struct {
			Discussions struct {
				Nodes []Discussion `json:"nodes"`
			} `json:"discussions"`
		} `json:"repository"`
	}
	err := c.do(ctx, "ghdiscuss.recent_discussions", recentDiscussionsQuery,
		map[string]any{"owner": owner, "name": name, "first": first}, &out)
	if err != nil {
		return nil, err
	}
	return out.Repository.Discussions.Nodes, nil
}

const createDiscussionMutation = `
mutation($repositoryId: ID!, $categoryId: ID!, $title: String!, $body: String!) {
  createDiscussion(input: {
    repositoryId: $repositoryId
    categoryId: $categoryId
    title: $title
    body: $body
  }) {
    discussion {
      id
      number
      url
    }
  }
}`

func (c *httpClient) CreateDiscussion(ctx context.Context, repoID, categoryID, title, body string) (*Discussion, error) {
	var out struct {
		CreateDiscussion struct {
			Discussion Discussion `json:"discussion"`
		} `json:"createDiscussion"`
	}
	err := c.do(ctx, "ghdiscuss.create_discussion", createDiscussionMutation, map[string]any{
		"repositoryId": repoID,
		"categoryId":   categoryID,
		"title":        title,
		"body":         body,
	}, &out)
	if err != nil {
		return nil, err
	}
	d := out.CreateDiscussion.Discussion
	d.Title = title
	return &d, nil
}

const listCommentsQuery = `
query($id: ID!, $first: Int!) {
  node(id: $id) {
    ... on Discussion {
      comments(first: $first) {
        nodes {
          id
          body
        }
      }
    }
  }
}`

func (c *httpClient) ListComments(ctx context.Context, discussionID string, first int) ([]Comment, error) {
	var out struct {
		Node struct {
			Comments struct {
				Nodes []Comment `json:"nodes"`
			} `json:"comments"`
		} `json:"node"`
	}
	err := c.do(ctx, "ghdiscuss.list_comments", listCommentsQuery,
		map[string]any{"id": discussionID, "first": first}, &out)
	if err != nil {
		return nil, err
	}
	return out.Node.Comments.Nodes, nil
}

const addCommentMutation = `
mutation($discussionId: ID!, $body: String!) {
  addDiscussionComment(input: {discussionId: $discussionId, body: $body}) {
    comment {
      id
    }
  }
}`

func (c *httpClient) AddComment(ctx context.Context, discussionID, body string) (string, error) {
	var out struct {
		AddDiscussionComment struct {
			Comment struct {
				ID string `json:"id"`
			} `json:"comment"`
		} `json:"addDiscussionComment"`
	}
	err := c.do(ctx, "ghdiscuss.add_comment", addCommentMutation,
		map[string]any{"discussionId": discussionID, "body": body}, &out)
	if err != nil {
		return "", err
	}
	return out.AddDiscussionComment.Comment.ID, nil
}

const updateCommentMutation = `
mutation($commentId: ID!, $body: String!) {
  updateDiscussionComment(input: {commentId: $commentId, body: $body}) {
    comment {
      id
    }
  }
}`

func (c *httpClient) UpdateComment(ctx context.Context, commentID, body string) error {
	return c.do(ctx, "ghdiscuss.update_comment", updateCommentMutation,
		map[string]any{"commentId": commentID, "body": body}, nil)
}
