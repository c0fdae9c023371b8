package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type fakeQueue struct {
	enqueued []bool
	actors   []string
	statuses map[string]backlite.TaskStatus
	err      error
}

func (q *fakeQueue) EnqueueIntegrity(repair bool, actor string) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, repair)
	q.actors = append(q.actors, actor)
	return "task-1", nil
}

func (q *fakeQueue) Status(_ context.Context, taskID string) (backlite.TaskStatus, error) {
	if status, ok := q.statuses[taskID]; ok {
		return status, nil
	}
	return backlite.TaskStatusNotFound, nil
}

// orphanAuthor inserts an author nobody links to.
func orphanAuthor(t *testing.T, app *testApp) {
	t.Helper()
	require.NoError(t, app.db.DB.Create(&entities.Author{Name: "Nobody"}).Error)
}

func TestIntegrityController_Page(t *testing.T) {
	app := setupApp(t)
	app.addBook(t, "Fluent Python", "Python", "Luciano Ramalho", month(2015, time.August))

	t.Run("clean catalog", func(t *testing.T) {
		rr := app.get("/admin/integrity")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "No problems found.")
	})

	t.Run("json report", func(t *testing.T) {
		orphanAuthor(t, app)

		rr := app.getJSON("/admin/integrity")

		require.Equal(t, http.StatusOK, rr.Code)
		var report catalog.IntegrityReport
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
		assert.Len(t, report.OrphanAuthors, 1)
		assert.False(t, report.Clean())
	})
}

func TestIntegrityController_RunRepair(t *testing.T) {
	t.Run("inline repair prunes and audits", func(t *testing.T) {
		app := setupApp(t)
		orphanAuthor(t, app)

		rr := app.post("/admin/integrity", url.Values{})

		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/admin/integrity", rr.Header().Get("Location"))

		var count int64
		require.NoError(t, app.db.DB.Model(&entities.Author{}).Count(&count).Error)
		assert.Zero(t, count)

		repairs, err := app.audit.GetEventsByAction(entities.AuditActionRepair, 10)
		require.NoError(t, err)
		require.Len(t, repairs, 1)
		assert.Equal(t, "topic_links=0 author_links=0 authors=1 topics=0", repairs[0].Details)
	})

	t.Run("background repair is queued", func(t *testing.T) {
		queue := &fakeQueue{}
		app := setupApp(t, withTaskQueue(queue))

		rr := app.post("/admin/integrity", url.Values{"mode": {"background"}})

		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/admin/integrity?task=task-1", rr.Header().Get("Location"))
		assert.Equal(t, []bool{true}, queue.enqueued)
		assert.Equal(t, []string{"local"}, queue.actors)
	})

	t.Run("queue failure is a server error", func(t *testing.T) {
		app := setupApp(t, withTaskQueue(&fakeQueue{err: errors.New("queue closed")}))

		rr := app.post("/admin/integrity", url.Values{"mode": {"background"}})

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("background without a queue repairs inline", func(t *testing.T) {
		app := setupApp(t)
		orphanAuthor(t, app)

		rr := app.post("/admin/integrity", url.Values{"mode": {"background"}})

		assert.Equal(t, "/admin/integrity", rr.Header().Get("Location"))
	})
}

func TestTasksController_GetTaskStatus(t *testing.T) {
	queue := &fakeQueue{statuses: map[string]backlite.TaskStatus{"task-1": backlite.TaskStatusSuccess}}
	app := setupApp(t, withTaskQueue(queue))

	rr := app.get("/admin/tasks/task-1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id": "task-1", "status": "success"}`, rr.Body.String())

	rr = app.get("/admin/tasks/unknown")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAuditController_AuditLogPage(t *testing.T) {
	app := setupApp(t)
	app.audit.Record("maintainer", entities.AuditActionBookAdd, "book", "fluent-python", "", nil)
	app.audit.Record("maintainer", entities.AuditActionLogin, "session", "", "provider=local", nil)

	t.Run("lists every event", func(t *testing.T) {
		rr := app.get("/admin/audit")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "2 events")
		assert.Contains(t, rr.Body.String(), "fluent-python")
	})

	t.Run("filters by action", func(t *testing.T) {
		rr := app.get("/admin/audit?action=login")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "1 events")
		assert.NotContains(t, rr.Body.String(), "fluent-python")
	})

	t.Run("bad page numbers fall back to the first page", func(t *testing.T) {
		rr := app.get("/admin/audit?page=-4")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Page 1 of 1")
	})
}
