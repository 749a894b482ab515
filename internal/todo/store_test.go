package todo

import (
	"errors"
	"testing"
	"time"

	"github.com/selintasman/todo-list/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAppendsInCallOrder(t *testing.T) {
	store := NewStore(Options{})

	for i, text := range []string{"first", "second", "third"} {
		task, err := store.Add(text)
		require.NoError(t, err)
		assert.NotEmpty(t, task.ID)
		assert.Equal(t, i+1, store.Len())
	}

	tasks := store.Tasks()
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"first", "second", "third"}, texts(tasks))
	for _, task := range tasks {
		assert.False(t, task.IsDone)
		assert.Nil(t, task.FinishDate)
		assert.Equal(t, model.PriorityUnset, task.Priority)
	}
}

func TestAddRejectsEmptyText(t *testing.T) {
	store := NewStore(Options{})

	_, err := store.Add("")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Equal(t, 0, store.Len())
}

func TestAddAssignsDistinctIDs(t *testing.T) {
	store := newStoreWith(t, Options{}, "a", "a")
	tasks := store.Tasks()
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)
}

func TestDeleteTwiceRemovesTwoTasks(t *testing.T) {
	store := newStoreWith(t, Options{}, "a", "b", "c")

	require.NoError(t, store.Delete(1))
	require.NoError(t, store.Delete(1))

	assert.Equal(t, []string{"a"}, texts(store.Tasks()))
}

func TestDeleteOutOfRange(t *testing.T) {
	store := newStoreWith(t, Options{}, "a")

	assert.ErrorIs(t, store.Delete(1), ErrInvalidIndex)
	assert.ErrorIs(t, store.Delete(-1), ErrInvalidIndex)
	assert.Equal(t, 1, store.Len())
}

func TestMarkAsDoneMovesTaskToEnd(t *testing.T) {
	store := newStoreWith(t, Options{}, "a", "b", "c", "d")

	require.NoError(t, store.MarkAsDone(1))

	tasks := store.Tasks()
	assert.Equal(t, []string{"a", "c", "d", "b"}, texts(tasks))
	assert.True(t, tasks[3].IsDone)
	assert.False(t, tasks[0].IsDone)
	assert.False(t, tasks[1].IsDone)
	assert.False(t, tasks[2].IsDone)
}

func TestMarkAsDoneIgnoresActiveSort(t *testing.T) {
	store := newStoreWith(t, Options{}, "a", "b", "c")
	_, err := store.SetPriority(2, model.PriorityHigh)
	require.NoError(t, err)
	store.ToggleSortByPriority()
	store.ApplySort()
	require.Equal(t, []string{"c", "a", "b"}, texts(store.Tasks()))

	require.NoError(t, store.MarkAsDone(0))

	tasks := store.Tasks()
	assert.Equal(t, []string{"a", "b", "c"}, texts(tasks))
	assert.True(t, tasks[2].IsDone)
}

func TestMarkAsDoneInvalidIndex(t *testing.T) {
	store := newStoreWith(t, Options{}, "a")
	assert.ErrorIs(t, store.MarkAsDone(3), ErrInvalidIndex)
	assert.False(t, store.Tasks()[0].IsDone)
}

func TestClearAll(t *testing.T) {
	store := newStoreWith(t, Options{}, "a", "b")
	store.ClearAll()
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Filtered())
}

func TestSetPriorityReturnsColorHint(t *testing.T) {
	store := newStoreWith(t, Options{}, "a")

	hint, err := store.SetPriority(0, model.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityColor(model.PriorityHigh), hint)
	assert.Equal(t, model.PriorityHigh, store.Tasks()[0].Priority)
}

func TestSetPriorityRejectsUnset(t *testing.T) {
	store := newStoreWith(t, Options{}, "a")

	_, err := store.SetPriority(0, model.PriorityUnset)
	assert.ErrorIs(t, err, ErrInvalidPriority)
	_, err = store.SetPriority(0, model.Priority(9))
	assert.ErrorIs(t, err, ErrInvalidPriority)
	_, err = store.SetPriority(4, model.PriorityLow)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestSetFinishDate(t *testing.T) {
	store := newStoreWith(t, Options{}, "a")
	due := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SetFinishDate(0, due))
	got := store.Tasks()[0].FinishDate
	require.NotNil(t, got)
	assert.True(t, got.Equal(due))

	assert.ErrorIs(t, store.SetFinishDate(1, due), ErrInvalidIndex)
}

func TestSnapshotsDoNotAliasStore(t *testing.T) {
	store := newStoreWith(t, Options{}, "a")
	due := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetFinishDate(0, due))

	tasks := store.Tasks()
	*tasks[0].FinishDate = due.AddDate(1, 0, 0)
	tasks[0].IsDone = true

	fresh := store.Tasks()[0]
	assert.True(t, fresh.FinishDate.Equal(due))
	assert.False(t, fresh.IsDone)
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	store := newStoreWith(t, Options{}, "buy milk for Task force", "walk dog")

	store.SetSearchText("Task")
	assert.Equal(t, []string{"buy milk for Task force"}, texts(store.Filtered()))

	store.SetSearchText("TASK")
	assert.Equal(t, []string{"buy milk for Task force"}, texts(store.Filtered()))

	store.SetSearchText("")
	assert.Len(t, store.Filtered(), 2)
}

func TestSearchDoesNotTouchTasks(t *testing.T) {
	store := newStoreWith(t, Options{}, "milk", "bread")

	store.SetSearchText("mi")

	assert.Equal(t, []string{"milk"}, texts(store.Filtered()))
	assert.Equal(t, 2, store.Len())
}

func TestIndicesAddressDisplayedSequence(t *testing.T) {
	store := newStoreWith(t, Options{}, "bread", "milk", "oat milk")
	store.SetSearchText("milk")

	require.NoError(t, store.Delete(1))

	assert.Equal(t, []string{"bread", "milk"}, texts(store.Tasks()))
}

func TestToggleSortIsMutuallyExclusive(t *testing.T) {
	store := NewStore(Options{})

	store.ToggleSortByDate()
	assert.True(t, store.SortByDate())
	assert.Equal(t, model.SortByDate, store.Mode())

	store.ToggleSortByPriority()
	assert.False(t, store.SortByDate())
	assert.True(t, store.SortByPriority())
	assert.Equal(t, model.SortByPriority, store.Mode())

	store.ToggleSortByPriority()
	assert.Equal(t, model.SortNone, store.Mode())
}

func TestToggleDoesNotReorder(t *testing.T) {
	store := newStoreWith(t, Options{}, "a", "b")
	_, err := store.SetPriority(1, model.PriorityHigh)
	require.NoError(t, err)

	store.ToggleSortByPriority()

	assert.Equal(t, []string{"a", "b"}, texts(store.Tasks()))
}

func TestApplySortByPriority(t *testing.T) {
	store := newStoreWith(t, Options{}, "A", "B", "C")
	setPriorities(t, store, model.PriorityLow, model.PriorityHigh, model.PriorityMedium)

	store.ToggleSortByPriority()
	store.ApplySort()

	assert.Equal(t, []string{"B", "C", "A"}, texts(store.Tasks()))
}

func TestApplySortByPriorityIsStable(t *testing.T) {
	store := newStoreWith(t, Options{}, "low1", "high1", "low2", "unset", "high2", "low3")
	setPriorities(t, store, model.PriorityLow, model.PriorityHigh, model.PriorityLow, model.PriorityUnset, model.PriorityHigh, model.PriorityLow)

	store.ToggleSortByPriority()
	store.ApplySort()

	assert.Equal(t, []string{"high1", "high2", "low1", "low2", "low3", "unset"}, texts(store.Tasks()))
}

func TestApplySortByDate(t *testing.T) {
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{name: "undated first", opts: Options{}, want: []string{"none", "early", "late"}},
		{name: "undated last", opts: Options{UndatedLast: true}, want: []string{"early", "late", "none"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStoreWith(t, tt.opts, "late", "none", "early")
			require.NoError(t, store.SetFinishDate(0, base.AddDate(0, 2, 0)))
			require.NoError(t, store.SetFinishDate(2, base))

			store.ToggleSortByDate()
			store.ApplySort()

			assert.Equal(t, tt.want, texts(store.Tasks()))
		})
	}
}

func TestApplySortWithoutModeKeepsOrder(t *testing.T) {
	store := newStoreWith(t, Options{}, "c", "a", "b")
	store.ApplySort()
	assert.Equal(t, []string{"c", "a", "b"}, texts(store.Tasks()))
}

func TestApplySortUnderSearchKeepsHiddenTasks(t *testing.T) {
	store := newStoreWith(t, Options{}, "milk", "bread")
	store.SetSearchText("mi")
	store.ToggleSortByDate()

	store.ApplySort()

	assert.Equal(t, []string{"milk", "bread"}, texts(store.Tasks()))
	assert.Equal(t, []string{"milk"}, texts(store.Filtered()))
}

func TestApplySortUnderSearchReordersMatchesInPlace(t *testing.T) {
	store := newStoreWith(t, Options{}, "milk low", "bread", "milk high", "eggs")
	store.SetSearchText("milk")
	_, err := store.SetPriority(0, model.PriorityLow)
	require.NoError(t, err)
	_, err = store.SetPriority(1, model.PriorityHigh)
	require.NoError(t, err)

	store.ToggleSortByPriority()
	store.ApplySort()

	assert.Equal(t, []string{"milk high", "bread", "milk low", "eggs"}, texts(store.Tasks()))
}

func TestApplySortCollapseDropsHiddenTasks(t *testing.T) {
	store := newStoreWith(t, Options{CollapseOnSort: true}, "milk", "bread")
	store.SetSearchText("mi")
	store.ToggleSortByDate()

	store.ApplySort()

	assert.Equal(t, []string{"milk"}, texts(store.Tasks()))
}

func TestApplySortCollapseWithoutMode(t *testing.T) {
	store := newStoreWith(t, Options{CollapseOnSort: true}, "milk", "bread", "mint")
	store.SetSearchText("mi")

	store.ApplySort()

	assert.Equal(t, []string{"milk", "mint"}, texts(store.Tasks()))
}

func TestByIDOperations(t *testing.T) {
	store := newStoreWith(t, Options{}, "a", "b", "c")
	ids := ids(store.Tasks())

	_, err := store.SetPriorityByID(ids[2], model.PriorityMedium)
	require.NoError(t, err)
	require.NoError(t, store.SetFinishDateByID(ids[1], time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, store.MarkAsDoneByID(ids[0]))
	require.NoError(t, store.DeleteByID(ids[1]))

	tasks := store.Tasks()
	assert.Equal(t, []string{"c", "a"}, texts(tasks))
	assert.Equal(t, model.PriorityMedium, tasks[0].Priority)
	assert.True(t, tasks[1].IsDone)

	err = store.DeleteByID("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = store.SetPriorityByID(ids[2], model.PriorityUnset)
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestIndexOfFollowsSearch(t *testing.T) {
	store := newStoreWith(t, Options{}, "bread", "milk")
	ids := ids(store.Tasks())

	index, ok := store.IndexOf(ids[1])
	assert.True(t, ok)
	assert.Equal(t, 1, index)

	store.SetSearchText("milk")
	index, ok = store.IndexOf(ids[1])
	assert.True(t, ok)
	assert.Equal(t, 0, index)

	_, ok = store.IndexOf(ids[0])
	assert.False(t, ok)
}

func TestEventsFollowMutations(t *testing.T) {
	var events []model.Event
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(Options{
		OnEvent: func(event model.Event) { events = append(events, event) },
		Now:     func() time.Time { return now },
	})

	task, err := store.Add("a")
	require.NoError(t, err)
	_, err = store.SetPriority(0, model.PriorityLow)
	require.NoError(t, err)
	require.NoError(t, store.MarkAsDone(0))
	assert.Error(t, store.Delete(5))
	require.NoError(t, store.Delete(0))
	store.ClearAll()

	types := make([]string, 0, len(events))
	for _, event := range events {
		types = append(types, event.Type)
		assert.Equal(t, now, event.At)
	}
	assert.Equal(t, []string{model.EventAdded, model.EventPriority, model.EventDone, model.EventDeleted, model.EventCleared}, types)
	assert.Equal(t, task.ID, events[0].TaskID)
	assert.Equal(t, "priority: 'none' -> 'Low'", events[1].Details)
}

func TestEventHookCanReadStore(t *testing.T) {
	var store *Store
	var lengths []int
	store = NewStore(Options{
		OnEvent: func(model.Event) { lengths = append(lengths, store.Len()) },
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.Add("a")
		_, _ = store.Add("b")
		_ = store.Delete(0)
		store.ApplySort()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event hook blocked on the store")
	}
	assert.Equal(t, []int{1, 2, 1, 1}, lengths)
}

func TestSnapshot(t *testing.T) {
	store := newStoreWith(t, Options{}, "milk", "bread")
	store.SetSearchText("bre")
	store.ToggleSortByDate()

	snap := store.Snapshot()
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, "bre", snap.SearchText)
	assert.Equal(t, model.SortByDate, snap.Mode)
	assert.Equal(t, []string{"bread"}, texts(snap.Tasks))
}

func newStoreWith(t *testing.T, opts Options, items ...string) *Store {
	t.Helper()
	store := NewStore(opts)
	for _, text := range items {
		_, err := store.Add(text)
		require.NoError(t, err)
	}
	return store
}

func setPriorities(t *testing.T, store *Store, priorities ...model.Priority) {
	t.Helper()
	for i, priority := range priorities {
		if priority == model.PriorityUnset {
			continue
		}
		_, err := store.SetPriority(i, priority)
		require.NoError(t, err)
	}
}

func texts(tasks []model.Task) []string {
	result := make([]string, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, task.Text)
	}
	return result
}

func ids(tasks []model.Task) []string {
	result := make([]string, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, task.ID)
	}
	return result
}
