package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tmwangi/elimu/core/track"
)

type trackRepository struct {
	db     *completionTable
	course *courseTable
}

var _ track.Repository = (*trackRepository)(nil) // interface compliance check

func NewTrackRepository(db *DB) track.Repository {
	return &trackRepository{db: db.completion, course: db.course}
}

func (repo *trackRepository) ContentExists(ctx context.Context, contentID string) (bool, error) {
	repo.course.RLock()
	defer repo.course.RUnlock()

	_, ok := repo.course.contents[contentID]
	return ok, nil
}

func (repo *trackRepository) CreateCompletion(ctx context.Context, cpl track.Completion) (track.Completion, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, c := range repo.db.table {
		if c.UserID == cpl.UserID && c.ContentID == cpl.ContentID {
			return *c, false, nil
		}
	}

	cpl.ID = uuid.New().String()
	repo.db.table[cpl.ID] = &cpl
	return cpl, true, nil
}

func (repo *trackRepository) DeleteCompletion(ctx context.Context, userID, contentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, c := range repo.db.table {
		if c.UserID == userID && c.ContentID == contentID {
			delete(repo.db.table, id)
			return nil
		}
	}
	return track.ErrNotCompleted
}

func (repo *trackRepository) QueryUserCompletions(ctx context.Context, userID string) ([]track.Completion, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	completions := make([]track.Completion, 0)
	for _, c := range repo.db.table {
		if c.UserID == userID {
			completions = append(completions, *c)
		}
	}
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].CompletedAt.Equal(completions[j].CompletedAt) {
			return completions[i].ID < completions[j].ID
		}
		return completions[i].CompletedAt.Before(completions[j].CompletedAt)
	})
	return completions, nil
}

func (repo *trackRepository) GetCourseProgress(ctx context.Context, userID, courseID string, asOf time.Time) (track.CourseProgress, error) {
	repo.course.RLock()
	released := make(map[string]struct{})
	for id, cnt := range repo.course.contents {
		if cnt.CourseID == courseID && !cnt.ReleaseTime.After(asOf) {
			released[id] = struct{}{}
		}
	}
	repo.course.RUnlock()

	repo.db.RLock()
	defer repo.db.RUnlock()

	var completed int
	for _, c := range repo.db.table {
		if c.UserID != userID {
			continue
		}
		if _, ok := released[c.ContentID]; ok {
			completed++
		}
	}
	return track.CourseProgress{Released: len(released), Completed: completed}, nil
}
