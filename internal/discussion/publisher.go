package discussion

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eic-hr/eic/internal/model"
	"github.com/eic-hr/eic/pkg/ghdiscuss"
)

// recentWindow is how many newest discussions are scanned for an exact
// title match. One thread is created per day, so this covers well over
// a month of history.
const recentWindow = 50

// commentWindow bounds the comment scan per thread. Each thread carries
// two marked comments plus human replies.
const commentWindow = 20

// Publisher reconciles the daily thread and its category comments.
type Publisher struct {
	client     ghdiscuss.Client
	owner      string
	repo       string
	categoryID string
}

// NewPublisher builds a Publisher targeting one repository's discussion
// category.
func NewPublisher(client ghdiscuss.Client, owner, repo, categoryID string) *Publisher {
	return &Publisher{client: client, owner: owner, repo: repo, categoryID: categoryID}
}

// Publish makes board state converge to: exactly one thread for the
// date, exactly one comment per category carrying the day's list.
// Repeated calls update bodies in place and never duplicate anything.
// Returns the thread URL.
func (p *Publisher) Publish(ctx context.Context, date string, summary *model.RunSummary, high, trend []model.Record) (string, error) {
	thread, err := p.ensureThread(ctx, date, summary)
	if err != nil {
		return "", err
	}

	if err := p.upsertComment(ctx, thread.ID, CategoryHigh, date, high); err != nil {
		return thread.URL, err
	}
	if err := p.upsertComment(ctx, thread.ID, CategoryTrend, date, trend); err != nil {
		return thread.URL, err
	}

	return thread.URL, nil
}

// ensureThread resolves the dated thread: adopt an existing one found
// by exact title, or create it. No thread ID is persisted locally.
func (p *Publisher) ensureThread(ctx context.Context, date string, summary *model.RunSummary) (*ghdiscuss.Discussion, error) {
	title := ThreadTitle(date)

	recent, err := p.client.RecentDiscussions(ctx, p.owner, p.repo, recentWindow)
	if err != nil {
		return nil, eris.Wrap(err, "discussion: list recent threads")
	}

	if action, found := ReconcileThread(recent, title); action.Kind == ActionUpdate {
		zap.L().Info("adopting existing thread",
			zap.String("title", title),
			zap.String("url", found.URL),
		)
		return found, nil
	}

	if p.categoryID == "" {
		return nil, eris.New("discussion: category id not configured")
	}

	repoID, err := p.client.RepositoryID(ctx, p.owner, p.repo)
	if err != nil {
		return nil, eris.Wrap(err, "discussion: resolve repository")
	}

	created, err := p.client.CreateDiscussion(ctx, repoID, p.categoryID, title, ThreadBody(date, summary))
	if err != nil {
		return nil, eris.Wrap(err, "discussion: create thread")
	}

	zap.L().Info("created thread", zap.String("title", title), zap.String("url", created.URL))
	return created, nil
}

// upsertComment resolves the (category, date) comment by marker and
// replaces its body, or creates it when absent.
func (p *Publisher) upsertComment(ctx context.Context, threadID string, cat Category, date string, items []model.Record) error {
	marker := CommentMarker(cat, date)
	body := CommentBody(cat, date, items)

	comments, err := p.client.ListComments(ctx, threadID, commentWindow)
	if err != nil {
		return eris.Wrapf(err, "discussion: list comments for %s", cat)
	}

	action := ReconcileComment(comments, marker)
	if action.Kind == ActionUpdate {
		if err := p.client.UpdateComment(ctx, action.ExistingID, body); err != nil {
			return eris.Wrapf(err, "discussion: update %s comment", cat)
		}
		zap.L().Info("updated comment", zap.String("category", string(cat)), zap.String("date", date))
		return nil
	}

	if _, err := p.client.AddComment(ctx, threadID, body); err != nil {
		return eris.Wrapf(err, "discussion: create %s comment", cat)
	}
	zap.L().Info("created comment", zap.String("category", string(cat)), zap.String("date", date))
	return nil
}
