package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// CreateBookRequest is the payload to register a new book.
type CreateBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Copies int    `json:"copies"`
}

// CreateMemberRequest is the payload to register a new member.
type CreateMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BorrowRequest is the payload to lend a book copy to a member.
type BorrowRequest struct {
	MemberID string `json:"member_id"`
	BookID   string `json:"book_id"`
}

// ReturnRequest is the payload to take back a borrowed book. Choice is
// the 1-based position into the member borrowed list. Positions shift
// after each removal so callers must re-fetch the list between returns.
type ReturnRequest struct {
	MemberID string `json:"member_id"`
	Choice   int    `json:"choice"`
}

// EditCopiesRequest is the payload of the book copy-count editor.
type EditCopiesRequest struct {
	TotalCopies     int `json:"total_copies"`
	AvailableCopies int `json:"available_copies"`
}

// DecodeRequestBody reads a json request payload into dst.
func DecodeRequestBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("invalid request body")
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

// StatusForError maps a library operation outcome to an http status code.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrBookNotFound), errors.Is(err, ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrOutOfStock), errors.Is(err, ErrNothingToReturn):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidSelection), errors.Is(err, ErrInvalidCopies):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Index sends callers to the dashboard page.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Status provides basics details about the application to the public users.
func (api *APIHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(
		map[string]interface{}{
			"requestid": requestID,
			"status":    fmt.Sprintf("up & running since %.0f mins", api.clock.Now().Sub(api.stats.started).Minutes()),
			"message":   "Hello. Library desk is open. Enjoy :)",
		},
	); err != nil {
		api.logger.Error("failed to send status response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// NotFound replies to any unknown route with the error envelope.
func (api *APIHandler) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errResp := NewAPIError("", http.StatusNotFound, "resource does not exist", EmptyData)
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send not found response", zap.Error(err))
		}
	})
}

func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateBookRequest
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	if err := DecodeRequestBody(r, &req); err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the book", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	if err := ValidateCreateBookRequestBody(&req); err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the book", err.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	book, err := api.library.AddBook(r.Context(), req.Title, req.Author, req.Copies)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, StatusForError(err), "failed to create the book", err.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	resp := GenericResponse(requestID, http.StatusCreated, "Book created successfully.", nil, book)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	books, err := api.library.ListBooks(r.Context())
	if err != nil {
		api.logger.Error("failed to get all books", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to get all books", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	total := len(books)
	resp := GenericResponse(requestID, http.StatusOK, "All books fetched successfully.", &total, books)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) CreateMember(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateMemberRequest
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	if err := DecodeRequestBody(r, &req); err != nil {
		api.logger.Error("failed to create member", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the member", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	if err := ValidateCreateMemberRequestBody(&req); err != nil {
		api.logger.Error("failed to create member", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the member", err.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	member, err := api.library.AddMember(r.Context(), req.Name, req.Email)
	if err != nil {
		api.logger.Error("failed to create member", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, StatusForError(err), "failed to create the member", err.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	resp := GenericResponse(requestID, http.StatusCreated, "Member created successfully.", nil, member)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) GetAllMembers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	members, err := api.library.ListMembers(r.Context())
	if err != nil {
		api.logger.Error("failed to get all members", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to get all members", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	total := len(members)
	resp := GenericResponse(requestID, http.StatusOK, "All members fetched successfully.", &total, members)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) GetOneMember(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := ps.ByName("id")
	member, err := api.library.GetMember(r.Context(), id)
	if err != nil {
		api.logger.Error("failed to get member", zap.String("member.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, StatusForError(err), "failed to get the member", err.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	resp := GenericResponse(requestID, http.StatusOK, "Member fetched successfully.", nil, member)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) BorrowBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req BorrowRequest
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	if err := DecodeRequestBody(r, &req); err != nil {
		api.logger.Error("failed to borrow book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to borrow the book", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	record, err := api.library.Borrow(r.Context(), req.MemberID, req.BookID)
	if err != nil {
		api.logger.Error("failed to borrow book",
			zap.String("member.id", req.MemberID),
			zap.String("book.id", req.BookID),
			zap.String("request.id", requestID),
			zap.Error(err),
		)
		errResp := NewAPIError(requestID, StatusForError(err), "failed to borrow the book", err.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	resp := GenericResponse(requestID, http.StatusCreated, "Book borrowed successfully.", nil, record)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) ReturnBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req ReturnRequest
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	if err := DecodeRequestBody(r, &req); err != nil {
		api.logger.Error("failed to return book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to return the book", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	record, err := api.library.Return(r.Context(), req.MemberID, req.Choice)
	if err != nil {
		api.logger.Error("failed to return book",
			zap.String("member.id", req.MemberID),
			zap.Int("return.choice", req.Choice),
			zap.String("request.id", requestID),
			zap.Error(err),
		)
		errResp := NewAPIError(requestID, StatusForError(err), "failed to return the book", err.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	resp := GenericResponse(requestID, http.StatusOK, "Book returned successfully.", nil, record)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) UpdateBookCopies(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req EditCopiesRequest
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := ps.ByName("id")
	if err := DecodeRequestBody(r, &req); err != nil {
		api.logger.Error("failed to update book copies", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to update the book copies", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	book, err := api.library.EditBookCopies(r.Context(), id, req.TotalCopies, req.AvailableCopies)
	if err != nil {
		api.logger.Error("failed to update book copies", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, StatusForError(err), "failed to update the book copies", err.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	resp := GenericResponse(requestID, http.StatusOK, "Book copies updated successfully.", nil, book)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) GetDashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	stats, err := api.library.Dashboard(r.Context())
	if err != nil {
		api.logger.Error("failed to get dashboard", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to get the dashboard", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	resp := GenericResponse(requestID, http.StatusOK, "Dashboard fetched successfully.", nil, stats)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) GetTrail(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	events, err := api.trail.Recent(r.Context(), limit)
	if err != nil {
		api.logger.Error("failed to get trail", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to get the circulation trail", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	total := len(events)
	resp := GenericResponse(requestID, http.StatusOK, "Circulation trail fetched successfully.", &total, events)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
