package controllers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"blog/app/middleware"
	"blog/app/repositories"
	"blog/app/services"
)

// BlogController handles the content pages: listing, post detail with
// comments, search, the contact form and the static pages.
type BlogController struct {
	posts     *services.PostService
	comments  *services.CommentService
	contact   *services.ContactService
	accounts  *services.AccountService
	templates map[string]*template.Template
}

// NewBlogController creates a new BlogController
func NewBlogController(posts *services.PostService, comments *services.CommentService,
	contact *services.ContactService, accounts *services.AccountService,
	templates map[string]*template.Template) *BlogController {
	return &BlogController{
		posts:     posts,
		comments:  comments,
		contact:   contact,
		accounts:  accounts,
		templates: templates,
	}
}

// Home redirects to the first listing page
func (bc *BlogController) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/page/1/", http.StatusFound)
}

// Page renders one page of the post listing
func (bc *BlogController) Page(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(mux.Vars(r)["page"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	posts, pg, err := bc.posts.Page(page)
	if errors.Is(err, services.ErrPageOutOfRange) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := bc.baseData(r)
	data["Posts"] = posts
	data["Pagination"] = pg
	data["PageBase"] = "/page/"
	data["NothingFound"] = false
	render(w, bc.templates, "index", data)
}

// ShowPost renders a post with its comments and, for logged-in visitors,
// the comment form
func (bc *BlogController) ShowPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, err := bc.posts.GetPost(id)
	if errors.Is(err, repositories.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := bc.baseData(r)
	data["Post"] = post
	data["Comments"] = post.Comments
	data["CommentText"] = ""
	render(w, bc.templates, "show", data)
}

// CreateComment attaches a new comment to a post. Anonymous visitors are
// redirected to the login page with a continuation back to the post; the
// guard runs before anything is written.
func (bc *BlogController) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	user := bc.accounts.CurrentUser(r)
	if user == nil {
		http.Redirect(w, r, middleware.LoginURL(fmt.Sprintf("/post/%d/", id)), http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	text := r.FormValue("text")

	_, err = bc.comments.AddComment(id, user.ID, text)
	if ve, ok := services.AsValidation(err); ok {
		// Re-render the post page, echoing the rejected text.
		post, gerr := bc.posts.GetPost(id)
		if errors.Is(gerr, repositories.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if gerr != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		data := bc.baseData(r)
		data["Post"] = post
		data["Comments"] = post.Comments
		data["CommentText"] = text
		data["Errors"] = ve.Fields
		render(w, bc.templates, "show", data)
		return
	}
	if errors.Is(err, repositories.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d/", id), http.StatusSeeOther)
}

// SearchForm renders the search form
func (bc *BlogController) SearchForm(w http.ResponseWriter, r *http.Request) {
	render(w, bc.templates, "search", bc.baseData(r))
}

// SearchSubmit canonicalizes the phrase and redirects to the results. The
// canonical query in the URL is the only state the results page needs.
func (bc *BlogController) SearchSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	query := bc.posts.CanonicalQuery(r.FormValue("query"))
	if query == "" {
		data := bc.baseData(r)
		data["Errors"] = map[string]string{"query": "This field is required."}
		render(w, bc.templates, "search", data)
		return
	}
	http.Redirect(w, r, "/search/"+url.PathEscape(query)+"/1/", http.StatusSeeOther)
}

// SearchResults renders one page of search results
func (bc *BlogController) SearchResults(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	query := vars["query"]

	posts, pg, err := bc.posts.Search(query, page)
	if errors.Is(err, services.ErrPageOutOfRange) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := bc.baseData(r)
	data["Posts"] = posts
	data["Pagination"] = pg
	data["PageBase"] = "/search/" + url.PathEscape(query) + "/"
	data["Query"] = query
	data["NothingFound"] = len(posts) == 0
	render(w, bc.templates, "index", data)
}

// ContactForm renders the contact form
func (bc *BlogController) ContactForm(w http.ResponseWriter, r *http.Request) {
	data := bc.baseData(r)
	data["Subject"] = ""
	data["Email"] = ""
	data["Message"] = ""
	render(w, bc.templates, "contact", data)
}

// ContactSubmit validates the submission and mails it to the blog
// operator. A transport failure is a server error, never a silent success.
func (bc *BlogController) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	msg := services.ContactMessage{
		Subject: r.FormValue("subject"),
		Email:   r.FormValue("email"),
		Message: r.FormValue("message"),
	}

	err := bc.contact.Send(msg)
	if ve, ok := services.AsValidation(err); ok {
		data := bc.baseData(r)
		data["Errors"] = ve.Fields
		data["Subject"] = msg.Subject
		data["Email"] = msg.Email
		data["Message"] = msg.Message
		render(w, bc.templates, "contact", data)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/contact/sent/", http.StatusSeeOther)
}

// EmailSent renders the send-confirmation page
func (bc *BlogController) EmailSent(w http.ResponseWriter, r *http.Request) {
	render(w, bc.templates, "emailsent", bc.baseData(r))
}

// About renders the about page
func (bc *BlogController) About(w http.ResponseWriter, r *http.Request) {
	render(w, bc.templates, "about", bc.baseData(r))
}

func (bc *BlogController) baseData(r *http.Request) map[string]any {
	return baseData(bc.posts, bc.accounts, r)
}
