package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CatalogController serves the public pages and the JSON export.
type CatalogController struct {
	*views
	reader CatalogReader
}

func NewCatalogController(reader CatalogReader, v *views) *CatalogController {
	return &CatalogController{views: v, reader: reader}
}

// Overview lists every topic and the books newest first.
// GET /
func (controller *CatalogController) Overview(c *gin.Context) {
	controller.overview(c, "")
}

// TopicOverview lists the books of a single topic.
// GET /topics/:topic
func (controller *CatalogController) TopicOverview(c *gin.Context) {
	controller.overview(c, c.Param("topic"))
}

func (controller *CatalogController) overview(c *gin.Context, topicSlug string) {
	ctx := c.Request.Context()

	topicName := ""
	if topicSlug != "" {
		topic, err := controller.reader.TopicBySlug(ctx, topicSlug)
		if err != nil {
			controller.renderError(c, err, "load topic")
			return
		}
		topicName = topic.Name
	}

	topicList, err := controller.reader.ListTopics(ctx)
	if err != nil {
		controller.renderError(c, err, "list topics")
		return
	}
	books, err := controller.reader.ListBooks(ctx, topicSlug)
	if err != nil {
		controller.renderError(c, err, "list books")
		return
	}

	title := "Bookshelf"
	if topicName != "" {
		title = topicName
	}
	controller.render(c, http.StatusOK, "overview", gin.H{
		"Title":     title,
		"Topics":    topicList,
		"Topic":     topicName,
		"TopicSlug": topicSlug,
		"Books":     books,
	})
}

// BookDetail shows one book with its authors.
// GET /topics/:topic/books/:book
func (controller *CatalogController) BookDetail(c *gin.Context) {
	detail, err := controller.reader.GetBookDetail(c.Request.Context(), c.Param("topic"), c.Param("book"))
	if err != nil {
		controller.renderError(c, err, "load book")
		return
	}

	controller.render(c, http.StatusOK, "book", gin.H{
		"Title":   detail.Book.Title,
		"Book":    detail.Book,
		"Topic":   detail.Topic,
		"Authors": detail.Authors,
	})
}

// ExportAll returns every book as JSON.
// GET /JSON
func (controller *CatalogController) ExportAll(c *gin.Context) {
	controller.export(c, "")
}

// ExportTopic returns the books of one topic as JSON.
// GET /topics/:topic/JSON
func (controller *CatalogController) ExportTopic(c *gin.Context) {
	controller.export(c, c.Param("topic"))
}

func (controller *CatalogController) export(c *gin.Context, topicSlug string) {
	export, err := controller.reader.ExportJSON(c.Request.Context(), topicSlug)
	if err != nil {
		respondJSONError(c, err, "export books")
		return
	}
	c.IndentedJSON(http.StatusOK, export)
}
