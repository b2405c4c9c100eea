package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// CreateBook registers a new book for an existing seller.
// @Summary      Create book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateBookInput  true  "Book payload"
// @Success      201      {object}  Book
// @Failure      400      {object}  APIError
// @Failure      422      {object}  APIError "too old or unknown seller"
// @Failure      500      {object}  APIError
// @Router       /api/v1/books/ [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input CreateBookInput
	if err := DecodeRequestBody(w, r, &input); err != nil {
		api.sendError(w, r, decodeStatus(err), "failed to decode the book", err)
		return
	}

	book, err := api.validator.ValidateCreateBookInput(input)
	if err != nil {
		api.sendError(w, r, errorStatus(err), "invalid book", err)
		return
	}

	book, err = api.bookService.Add(r.Context(), book)
	if err != nil {
		api.sendError(w, r, errorStatus(err), "failed to create the book", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create book",
		zap.Int64("book.id", book.ID),
		zap.String("request.id", RequestIDFromContext(r.Context())),
	)
	api.sendResponse(w, r, http.StatusCreated, book)
}

// GetAllBooks lists every book ordered by id.
// @Summary      List books
// @Tags         books
// @Produce      json
// @Success      200  {object}  BooksList
// @Failure      500  {object}  APIError
// @Router       /api/v1/books/ [get]
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	books, err := api.bookService.GetAll(r.Context())
	if err != nil {
		api.sendError(w, r, errorStatus(err), "failed to get all books", err)
		return
	}
	if books == nil {
		books = []Book{}
	}
	api.sendResponse(w, r, http.StatusOK, BooksList{Books: books})
}

// GetOneBook fetches a single book.
// @Summary      Get book
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  Book
// @Failure      404  {object}  APIError
// @Router       /api/v1/books/{id} [get]
func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ReadIDParam(ps, "id")
	if err != nil {
		api.sendError(w, r, errorStatus(err), "book id provided is not valid", err)
		return
	}

	book, err := api.bookService.GetOne(r.Context(), id)
	if err != nil {
		api.sendError(w, r, errorStatus(err), "failed to get the book", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, book)
}

// UpdateBook replaces all fields of a book.
// @Summary      Update book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id       path      int              true  "Book ID"
// @Param        payload  body      UpdateBookInput  true  "Book payload"
// @Success      200      {object}  Book
// @Failure      400      {object}  APIError
// @Failure      404      {object}  APIError
// @Failure      422      {object}  APIError
// @Router       /api/v1/books/{id} [put]
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ReadIDParam(ps, "id")
	if err != nil {
		api.sendError(w, r, errorStatus(err), "book id provided is not valid", err)
		return
	}

	var input UpdateBookInput
	if err = DecodeRequestBody(w, r, &input); err != nil {
		api.sendError(w, r, decodeStatus(err), "failed to decode the book", err)
		return
	}

	book, err := api.validator.ValidateUpdateBookInput(input)
	if err != nil {
		api.sendError(w, r, errorStatus(err), "invalid book", err)
		return
	}

	book, err = api.bookService.Update(r.Context(), id, book)
	if err != nil {
		api.sendError(w, r, errorStatus(err), "failed to update the book", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to update book",
		zap.Int64("book.id", id),
		zap.String("request.id", RequestIDFromContext(r.Context())),
	)
	api.sendResponse(w, r, http.StatusOK, book)
}

// DeleteOneBook removes a single book.
// @Summary      Delete book
// @Tags         books
// @Param        id   path  int  true  "Book ID"
// @Success      204
// @Failure      404  {object}  APIError
// @Router       /api/v1/books/{id} [delete]
func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ReadIDParam(ps, "id")
	if err != nil {
		api.sendError(w, r, errorStatus(err), "book id provided is not valid", err)
		return
	}

	if err = api.bookService.Delete(r.Context(), id); err != nil {
		api.sendError(w, r, errorStatus(err), "failed to delete the book", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to delete book",
		zap.Int64("book.id", id),
		zap.String("request.id", RequestIDFromContext(r.Context())),
	)
	if err = WriteNoContent(r.Context(), w); err != nil {
		api.logger.Error("failed to send response", zap.Error(err))
	}
}
