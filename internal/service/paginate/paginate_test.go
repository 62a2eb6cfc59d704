package paginate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"optimaflow/internal/storage"
)

func TestRun_StopsAfterOneCallWithoutCursor(t *testing.T) {
	calls := 0

	res, err := Run(context.Background(), func(ctx context.Context, afterTag string, collected []storage.WorkOrder) (Page, error) {
		calls++
		assert.Equal(t, "", afterTag)
		return Page{
			Orders:     []storage.WorkOrder{{OrderNo: "A1"}},
			TotalCount: 5,
		}, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 5, res.TotalBeforeFilter)
	assert.Len(t, res.Orders, 1)
}

func TestRun_FollowsCursorAndAccumulates(t *testing.T) {
	pages := []Page{
		{Orders: []storage.WorkOrder{{OrderNo: "A1"}}, AfterTag: "tag-1", TotalCount: 2},
		{AfterTag: "tag-2", TotalCount: 2},
		{TotalCount: 1},
	}

	var seenTags []string

	res, err := Run(context.Background(), func(ctx context.Context, afterTag string, collected []storage.WorkOrder) (Page, error) {
		seenTags = append(seenTags, afterTag)
		page := pages[len(seenTags)-1]
		// callee appends onto the accumulated collection
		page.Orders = append(collected, storage.WorkOrder{OrderNo: fmt.Sprintf("P%d", len(seenTags))})
		return page, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"", "tag-1", "tag-2"}, seenTags)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, 5, res.TotalBeforeFilter)
	assert.Len(t, res.Orders, 3)
}

func TestRun_FinishedFlagStopsDespiteCursor(t *testing.T) {
	finished := true
	calls := 0

	res, err := Run(context.Background(), func(ctx context.Context, afterTag string, collected []storage.WorkOrder) (Page, error) {
		calls++
		return Page{AfterTag: "more", Finished: &finished}, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.Pages)
}

func TestRun_ExplicitNotFinishedContinues(t *testing.T) {
	notFinished := false
	calls := 0

	_, err := Run(context.Background(), func(ctx context.Context, afterTag string, collected []storage.WorkOrder) (Page, error) {
		calls++
		if calls == 2 {
			return Page{}, nil
		}
		return Page{AfterTag: "next", Finished: &notFinished}, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRun_FetchErrorPropagates(t *testing.T) {
	fetchErr := errors.New("page fetch failed")

	res, err := Run(context.Background(), func(ctx context.Context, afterTag string, collected []storage.WorkOrder) (Page, error) {
		if afterTag == "" {
			return Page{Orders: []storage.WorkOrder{{OrderNo: "A1"}}, AfterTag: "tag-1"}, nil
		}
		return Page{}, fetchErr
	})

	assert.ErrorIs(t, err, fetchErr)
	assert.Empty(t, res.Orders)
}
