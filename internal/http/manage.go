package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// ManageController handles the maintainer forms: add, edit and delete.
// Every route sits behind auth.RequireMaintainer.
type ManageController struct {
	*views
	reader  CatalogReader
	writer  CatalogWriter
	auditor Auditor
}

func NewManageController(reader CatalogReader, writer CatalogWriter, auditor Auditor, v *views) *ManageController {
	return &ManageController{
		views:   v,
		reader:  reader,
		writer:  writer,
		auditor: auditor,
	}
}

func (mc *ManageController) record(c *gin.Context, action entities.AuditAction, entityType, entitySlug, details string, err error) {
	if mc.auditor != nil {
		mc.auditor.Record(auth.GetMaintainer(c), action, entityType, entitySlug, details, err)
	}
}

func (mc *ManageController) recordDelete(c *gin.Context, action entities.AuditAction, entityType, entitySlug string, result *catalog.DeleteResult, err error) {
	if mc.auditor == nil {
		return
	}
	var books, authors, topics int
	if result != nil {
		books, authors, topics = len(result.BookIDs), len(result.PrunedAuthors), len(result.PrunedTopics)
	}
	mc.auditor.RecordDelete(auth.GetMaintainer(c), action, entityType, entitySlug, books, authors, topics, err)
}

func (mc *ManageController) renderBookForm(c *gin.Context, status int, data gin.H, form bookForm, errs map[string]string) {
	data["Form"] = form
	data["Errors"] = errs
	mc.render(c, status, "book_form", data)
}

// AddBookPage shows an empty book form.
// GET /add
func (mc *ManageController) AddBookPage(c *gin.Context) {
	mc.renderBookForm(c, http.StatusOK, addBookData(), bookForm{}, nil)
}

func addBookData() gin.H {
	return gin.H{"Title": "Add book", "IsNew": true, "Action": "/add"}
}

// AddBook creates a book from the submitted form.
// POST /add
func (mc *ManageController) AddBook(c *gin.Context) {
	form := bindBookForm(c)
	if err := form.validate(true); err != nil {
		mc.renderBookForm(c, http.StatusBadRequest, addBookData(), form, fieldErrors(err))
		return
	}

	in, err := form.input()
	if err != nil {
		mc.renderBookForm(c, http.StatusBadRequest, addBookData(), form, fieldErrors(err))
		return
	}

	book, err := mc.writer.AddBook(c.Request.Context(), in)
	if err != nil {
		mc.record(c, entities.AuditActionBookAdd, "book", "", "title="+form.Title, err)
		if catalog.IsValidation(err) {
			mc.renderBookForm(c, http.StatusBadRequest, addBookData(), form, fieldErrors(err))
			return
		}
		mc.renderError(c, err, "add book")
		return
	}
	mc.record(c, entities.AuditActionBookAdd, "book", book.Slug, "title="+book.Title, nil)

	mc.redirectWithFlash(c, "/", flashSuccess, "Book successfully added.")
}

// EditTopicPage shows the rename form prefilled with the current name.
// GET /topics/:topic/edit
func (mc *ManageController) EditTopicPage(c *gin.Context) {
	topic, err := mc.reader.TopicBySlug(c.Request.Context(), c.Param("topic"))
	if err != nil {
		mc.renderError(c, err, "load topic")
		return
	}
	mc.renderTopicForm(c, http.StatusOK, topic, topicForm{Name: topic.Name}, nil)
}

func (mc *ManageController) renderTopicForm(c *gin.Context, status int, topic *entities.Topic, form topicForm, errs map[string]string) {
	mc.render(c, status, "topic_form", gin.H{
		"Title":  "Edit " + topic.Name,
		"Name":   topic.Name,
		"Action": "/topics/" + topic.Slug + "/edit",
		"Form":   form,
		"Errors": errs,
	})
}

// EditTopic renames a topic. Submitting the current name is a no-op.
// POST /topics/:topic/edit
func (mc *ManageController) EditTopic(c *gin.Context) {
	ctx := c.Request.Context()
	topic, err := mc.reader.TopicBySlug(ctx, c.Param("topic"))
	if err != nil {
		mc.renderError(c, err, "load topic")
		return
	}

	form := bindTopicForm(c)
	if err := form.validate(); err != nil {
		mc.renderTopicForm(c, http.StatusBadRequest, topic, form, fieldErrors(err))
		return
	}

	if form.Name != topic.Name {
		updated, err := mc.writer.UpdateTopic(ctx, topic.ID, form.Name)
		if err != nil {
			mc.record(c, entities.AuditActionTopicUpdate, "topic", topic.Slug, "name="+form.Name, err)
			if catalog.IsValidation(err) {
				mc.renderTopicForm(c, http.StatusBadRequest, topic, form, fieldErrors(err))
				return
			}
			mc.renderError(c, err, "update topic")
			return
		}
		mc.record(c, entities.AuditActionTopicUpdate, "topic", updated.Slug, "renamed from "+topic.Name, nil)
	}

	mc.redirectWithFlash(c, "/", flashSuccess, "Topic successfully edited.")
}

// DeleteTopicPage asks for confirmation.
// GET /topics/:topic/delete
func (mc *ManageController) DeleteTopicPage(c *gin.Context) {
	topic, err := mc.reader.TopicBySlug(c.Request.Context(), c.Param("topic"))
	if err != nil {
		mc.renderError(c, err, "load topic")
		return
	}

	mc.render(c, http.StatusOK, "confirm_delete", gin.H{
		"Title":   "Delete " + topic.Name,
		"Name":    topic.Name,
		"IsTopic": true,
		"Action":  "/topics/" + topic.Slug + "/delete",
		"Cancel":  "/topics/" + topic.Slug,
	})
}

// DeleteTopic removes a topic and every book left without one.
// POST /topics/:topic/delete
func (mc *ManageController) DeleteTopic(c *gin.Context) {
	ctx := c.Request.Context()
	topic, err := mc.reader.TopicBySlug(ctx, c.Param("topic"))
	if err != nil {
		mc.renderError(c, err, "load topic")
		return
	}

	if c.PostForm("confirm") != "yes" {
		mc.redirectWithFlash(c, "/topics/"+topic.Slug, flashInfo, "Deletion cancelled.")
		return
	}

	result, err := mc.writer.DeleteTopic(ctx, topic.ID)
	mc.recordDelete(c, entities.AuditActionTopicDelete, "topic", topic.Slug, result, err)
	if err != nil {
		mc.renderError(c, err, "delete topic")
		return
	}

	mc.redirectWithFlash(c, "/", flashSuccess, "Topic successfully deleted.")
}

func editBookData(detail *catalog.BookDetail) gin.H {
	base := "/topics/" + detail.Topic.Slug + "/books/" + detail.Book.Slug
	return gin.H{
		"Title":  "Edit " + detail.Book.Title,
		"Name":   detail.Book.Title,
		"Action": base + "/edit",
		"Cancel": base,
	}
}

// EditBookPage shows the book form prefilled with the stored values.
// GET /topics/:topic/books/:book/edit
func (mc *ManageController) EditBookPage(c *gin.Context) {
	detail, err := mc.reader.GetBookDetail(c.Request.Context(), c.Param("topic"), c.Param("book"))
	if err != nil {
		mc.renderError(c, err, "load book")
		return
	}
	mc.renderBookForm(c, http.StatusOK, editBookData(detail), prefillBookForm(detail), nil)
}

// EditBook overwrites a book and its author list.
// POST /topics/:topic/books/:book/edit
func (mc *ManageController) EditBook(c *gin.Context) {
	ctx := c.Request.Context()
	detail, err := mc.reader.GetBookDetail(ctx, c.Param("topic"), c.Param("book"))
	if err != nil {
		mc.renderError(c, err, "load book")
		return
	}

	form := bindBookForm(c)
	if err := form.validate(false); err != nil {
		mc.renderBookForm(c, http.StatusBadRequest, editBookData(detail), form, fieldErrors(err))
		return
	}

	in, err := form.update()
	if err != nil {
		mc.renderBookForm(c, http.StatusBadRequest, editBookData(detail), form, fieldErrors(err))
		return
	}

	book, err := mc.writer.UpdateBook(ctx, detail.Book.ID, in)
	if err != nil {
		mc.record(c, entities.AuditActionBookUpdate, "book", detail.Book.Slug, "title="+form.Title, err)
		if catalog.IsValidation(err) {
			mc.renderBookForm(c, http.StatusBadRequest, editBookData(detail), form, fieldErrors(err))
			return
		}
		mc.renderError(c, err, "update book")
		return
	}
	mc.record(c, entities.AuditActionBookUpdate, "book", book.Slug, "title="+book.Title, nil)

	mc.redirectWithFlash(c, "/", flashSuccess, "Book successfully edited.")
}

// DeleteBookPage asks for confirmation.
// GET /topics/:topic/books/:book/delete
func (mc *ManageController) DeleteBookPage(c *gin.Context) {
	detail, err := mc.reader.GetBookDetail(c.Request.Context(), c.Param("topic"), c.Param("book"))
	if err != nil {
		mc.renderError(c, err, "load book")
		return
	}

	base := "/topics/" + detail.Topic.Slug + "/books/" + detail.Book.Slug
	mc.render(c, http.StatusOK, "confirm_delete", gin.H{
		"Title":  "Delete " + detail.Book.Title,
		"Name":   detail.Book.Title,
		"IsBook": true,
		"Action": base + "/delete",
		"Cancel": base,
	})
}

// DeleteBook removes a book and prunes authors and topics it was the last
// link of.
// POST /topics/:topic/books/:book/delete
func (mc *ManageController) DeleteBook(c *gin.Context) {
	ctx := c.Request.Context()
	detail, err := mc.reader.GetBookDetail(ctx, c.Param("topic"), c.Param("book"))
	if err != nil {
		mc.renderError(c, err, "load book")
		return
	}

	if c.PostForm("confirm") != "yes" {
		mc.redirectWithFlash(c, "/topics/"+detail.Topic.Slug+"/books/"+detail.Book.Slug, flashInfo, "Deletion cancelled.")
		return
	}

	result, err := mc.writer.DeleteBook(ctx, detail.Book.ID)
	mc.recordDelete(c, entities.AuditActionBookDelete, "book", detail.Book.Slug, result, err)
	if err != nil {
		mc.renderError(c, err, "delete book")
		return
	}

	mc.redirectWithFlash(c, "/", flashSuccess, "Book successfully deleted.")
}
