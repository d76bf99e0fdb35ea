package main

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var webTemplatesFS embed.FS

// MustParseTemplates loads the embedded HTML pages once at startup.
func MustParseTemplates() *template.Template {
	funcs := template.FuncMap{
		"addOne": func(i int) int { return i + 1 },
	}
	return template.Must(template.New("web").Funcs(funcs).ParseFS(webTemplatesFS, "templates/*.html"))
}

// WebPage carries everything the HTML pages can display.
type WebPage struct {
	Active   string
	Message  string
	Error    string
	Stats    DashboardStats
	Books    []Book
	Members  []Member
	Member   Member
	MemberID string
}

// renderPage executes one of the embedded page templates.
func (api *APIHandler) renderPage(w http.ResponseWriter, r *http.Request, name string, page *WebPage) {
	page.Message = r.URL.Query().Get("msg")
	page.Error = r.URL.Query().Get("err")
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	if err := api.templates.ExecuteTemplate(w, name, page); err != nil {
		requestID := GetValueFromContext(r.Context(), ContextRequestID)
		api.logger.Error("failed to render page",
			zap.String("request.id", requestID),
			zap.String("page.name", name),
			zap.Error(err),
		)
	}
}

// redirectWithMessage sends the browser back to a page with a flash note.
func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?msg="+url.QueryEscape(msg), http.StatusSeeOther)
}

// redirectWithError sends the browser back to a page with a failure note.
func redirectWithError(w http.ResponseWriter, r *http.Request, path string, err error) {
	http.Redirect(w, r, path+"?err="+url.QueryEscape(err.Error()), http.StatusSeeOther)
}

// DashboardPage shows the aggregate counters and the recently added books.
func (api *APIHandler) DashboardPage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := api.library.Dashboard(r.Context())
	if err != nil {
		redirectWithError(w, r, "/books", err)
		return
	}
	api.renderPage(w, r, "dashboard.html", &WebPage{Active: "dashboard", Stats: stats})
}

// BooksPage lists every book with the add and edit forms.
func (api *APIHandler) BooksPage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	books, err := api.library.ListBooks(r.Context())
	if err != nil {
		redirectWithError(w, r, "/dashboard", err)
		return
	}
	api.renderPage(w, r, "books.html", &WebPage{Active: "books", Books: books})
}

// AddBookForm registers a new book from the form fields.
func (api *APIHandler) AddBookForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	copies, err := strconv.Atoi(r.FormValue("copies"))
	if err != nil {
		redirectWithError(w, r, "/books", ErrInvalidCopies)
		return
	}
	book, err := api.library.AddBook(r.Context(), r.FormValue("title"), r.FormValue("author"), copies)
	if err != nil {
		redirectWithError(w, r, "/books", err)
		return
	}
	redirectWithMessage(w, r, "/books", "Book added: "+book.ID+" "+book.Title)
}

// EditBookForm overwrites the copy counts of a book. The core clamps
// the available count into [0, total] before persisting.
func (api *APIHandler) EditBookForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	total, errT := strconv.Atoi(r.FormValue("total_copies"))
	available, errA := strconv.Atoi(r.FormValue("available_copies"))
	if errT != nil || errA != nil {
		redirectWithError(w, r, "/books", ErrInvalidCopies)
		return
	}
	book, err := api.library.EditBookCopies(r.Context(), r.FormValue("book_id"), total, available)
	if err != nil {
		redirectWithError(w, r, "/books", err)
		return
	}
	redirectWithMessage(w, r, "/books", "Book updated: "+book.ID)
}

// MembersPage lists every member with their borrowed books.
func (api *APIHandler) MembersPage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	members, err := api.library.ListMembers(r.Context())
	if err != nil {
		redirectWithError(w, r, "/dashboard", err)
		return
	}
	api.renderPage(w, r, "members.html", &WebPage{Active: "members", Members: members})
}

// AddMemberForm registers a new member from the form fields.
func (api *APIHandler) AddMemberForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	member, err := api.library.AddMember(r.Context(), r.FormValue("name"), r.FormValue("email"))
	if err != nil {
		redirectWithError(w, r, "/members", err)
		return
	}
	redirectWithMessage(w, r, "/members", "Member added: "+member.ID+" "+member.Name)
}

// BorrowPage shows the member and book pickers.
func (api *APIHandler) BorrowPage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	members, err := api.library.ListMembers(r.Context())
	if err != nil {
		redirectWithError(w, r, "/dashboard", err)
		return
	}
	books, err := api.library.ListBooks(r.Context())
	if err != nil {
		redirectWithError(w, r, "/dashboard", err)
		return
	}
	api.renderPage(w, r, "borrow.html", &WebPage{Active: "borrow", Members: members, Books: books})
}

// BorrowForm lends the selected book to the selected member.
func (api *APIHandler) BorrowForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	record, err := api.library.Borrow(r.Context(), r.FormValue("member_id"), r.FormValue("book_id"))
	if err != nil {
		redirectWithError(w, r, "/borrow", err)
		return
	}
	redirectWithMessage(w, r, "/borrow", "Borrowed: "+record.Title)
}

// ReturnPage shows the borrowed list of the selected member, or the
// member picker when none is selected yet.
func (api *APIHandler) ReturnPage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := &WebPage{Active: "return"}
	members, err := api.library.ListMembers(r.Context())
	if err != nil {
		redirectWithError(w, r, "/dashboard", err)
		return
	}
	page.Members = members

	if memberID := r.URL.Query().Get("member"); memberID != "" {
		member, err := api.library.GetMember(r.Context(), memberID)
		if err != nil {
			redirectWithError(w, r, "/return", err)
			return
		}
		page.Member = member
		page.MemberID = member.ID
	}
	api.renderPage(w, r, "return.html", page)
}

// ReturnForm takes back the borrowed book at the selected position. The
// page must be re-fetched between returns since positions shift.
func (api *APIHandler) ReturnForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	memberID := r.FormValue("member_id")
	choice, err := strconv.Atoi(r.FormValue("choice"))
	if err != nil {
		redirectWithError(w, r, "/return", ErrInvalidSelection)
		return
	}
	record, err := api.library.Return(r.Context(), memberID, choice)
	if err != nil {
		redirectWithError(w, r, "/return", err)
		return
	}
	redirectWithMessage(w, r, "/return", "Returned: "+record.Title)
}
