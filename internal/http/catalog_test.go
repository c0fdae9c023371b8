package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/catalog"
)

func TestCatalogController_Overview(t *testing.T) {
	app := setupApp(t)
	app.addBook(t, "Fluent Python", "Python", "Luciano Ramalho", month(2015, time.August))
	app.addBook(t, "Eloquent JavaScript", "JavaScript", "Marijn Haverbeke", month(2018, time.December))

	rr := app.get("/")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `href="/topics/python"`)
	assert.Contains(t, body, `href="/topics/javascript/books/eloquent-javascript"`)
	assert.Contains(t, body, "December 2018")
	assert.Less(t, strings.Index(body, "Eloquent JavaScript"), strings.Index(body, "Fluent Python"), "newest book first")
}

func TestCatalogController_TopicOverview(t *testing.T) {
	app := setupApp(t)
	app.addBook(t, "Fluent Python", "Python", "Luciano Ramalho", month(2015, time.August))
	app.addBook(t, "Eloquent JavaScript", "JavaScript", "Marijn Haverbeke", month(2018, time.December))

	t.Run("lists only the topic's books", func(t *testing.T) {
		rr := app.get("/topics/python")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "<h2>Python</h2>")
		assert.Contains(t, rr.Body.String(), "Fluent Python")
		assert.NotContains(t, rr.Body.String(), "Eloquent JavaScript</a>")
	})

	t.Run("unknown topic is not found", func(t *testing.T) {
		rr := app.get("/topics/cobol")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "does not exist")
	})
}

func TestCatalogController_BookDetail(t *testing.T) {
	app := setupApp(t)
	app.addBook(t, "The Go Programming Language", "Go", "Alan Donovan, Brian Kernighan", month(2015, time.October))

	t.Run("shows authors in entry order", func(t *testing.T) {
		rr := app.get("/topics/go/books/the-go-programming-language")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "by Alan Donovan, Brian Kernighan")
		assert.Contains(t, rr.Body.String(), "October 2015")
	})

	t.Run("unknown book is not found", func(t *testing.T) {
		rr := app.get("/topics/go/books/missing")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown topic is not found", func(t *testing.T) {
		rr := app.get("/topics/rust/books/the-go-programming-language")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestCatalogController_Export(t *testing.T) {
	app := setupApp(t)
	app.addBook(t, "Fluent Python", "Python", "Luciano Ramalho", month(2015, time.August))
	app.addBook(t, "Eloquent JavaScript", "JavaScript", "Marijn Haverbeke", month(2018, time.December))

	t.Run("exports every book in id order", func(t *testing.T) {
		rr := app.get("/JSON")
		require.Equal(t, http.StatusOK, rr.Code)

		var export catalog.Export
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &export))
		require.Len(t, export.Books, 2)
		assert.Equal(t, "Fluent Python", export.Books[0].Title)
		assert.Equal(t, "August 2015", export.Books[0].PublicationDate)
		assert.Equal(t, "9780000000000", export.Books[0].ISBN)
	})

	t.Run("exports one topic", func(t *testing.T) {
		rr := app.get("/topics/javascript/JSON")
		require.Equal(t, http.StatusOK, rr.Code)

		var export catalog.Export
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &export))
		require.Len(t, export.Books, 1)
		assert.Equal(t, "Eloquent JavaScript", export.Books[0].Title)
	})

	t.Run("unknown topic is a JSON 404", func(t *testing.T) {
		rr := app.get("/topics/cobol/JSON")
		require.Equal(t, http.StatusNotFound, rr.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("empty catalog exports an empty list", func(t *testing.T) {
		empty := setupApp(t)
		rr := empty.get("/JSON")
		assert.JSONEq(t, `{"books": []}`, rr.Body.String())
	})
}

func TestRouter_NoRoute(t *testing.T) {
	app := setupApp(t)

	rr := app.get("/nowhere/at/all")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}
