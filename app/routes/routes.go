package routes

import (
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/mux"

	"blog/app/controllers"
	"blog/app/mail"
	"blog/app/middleware"
	"blog/app/repositories"
	"blog/app/services"
)

// Deps carries everything the route table needs to build its controllers.
type Deps struct {
	DB       *badger.DB
	Sender   mail.Sender
	ViewsDir string

	// ContactRecipient is the fixed operator address contact mail goes to.
	ContactRecipient string
	// FromAddress is the envelope sender for outgoing mail.
	FromAddress string
	// BaseURL is the external URL of the site, used in reset links.
	BaseURL string

	SessionTTL time.Duration
}

// Setup builds the application router with all routes wired.
func Setup(deps Deps) (*mux.Router, error) {
	templates, err := controllers.LoadTemplates(deps.ViewsDir)
	if err != nil {
		return nil, err
	}

	postRepo := repositories.NewBadgerPostRepository(deps.DB)
	commentRepo := repositories.NewBadgerCommentRepository(deps.DB)
	userRepo := repositories.NewBadgerUserRepository(deps.DB)

	postService := services.NewPostService(postRepo, commentRepo)
	commentService := services.NewCommentService(commentRepo, postRepo)
	contactService := services.NewContactService(deps.Sender, deps.ContactRecipient)
	accountService := services.NewAccountService(userRepo, deps.Sender, deps.FromAddress, deps.SessionTTL)

	blog := controllers.NewBlogController(postService, commentService, contactService, accountService, templates)
	accounts := controllers.NewAccountController(accountService, postService, deps.BaseURL, templates)

	router := mux.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Content routes
	router.HandleFunc("/", blog.Home).Methods("GET")
	router.HandleFunc("/page/{page:[0-9]+}/", blog.Page).Methods("GET")
	router.HandleFunc("/post/{id:[0-9]+}/", blog.ShowPost).Methods("GET")
	router.HandleFunc("/post/{id:[0-9]+}/", blog.CreateComment).Methods("POST")
	router.HandleFunc("/search/", blog.SearchForm).Methods("GET")
	router.HandleFunc("/search/", blog.SearchSubmit).Methods("POST")
	router.HandleFunc("/search/{query}/{page:[0-9]+}/", blog.SearchResults).Methods("GET")
	router.HandleFunc("/contact/", blog.ContactForm).Methods("GET")
	router.HandleFunc("/contact/", blog.ContactSubmit).Methods("POST")
	router.HandleFunc("/contact/sent/", blog.EmailSent).Methods("GET")
	router.HandleFunc("/about/", blog.About).Methods("GET")

	// Account routes
	acc := router.PathPrefix("/accounts").Subrouter()
	acc.HandleFunc("/signup/", accounts.SignUpForm).Methods("GET")
	acc.HandleFunc("/signup/", accounts.SignUpSubmit).Methods("POST")
	acc.HandleFunc("/login/", accounts.LoginForm).Methods("GET")
	acc.HandleFunc("/login/", accounts.LoginSubmit).Methods("POST")
	acc.HandleFunc("/logout/", accounts.Logout).Methods("GET")

	acc.HandleFunc("/settings/", middleware.RequireAuth(accountService, accounts.SettingsForm)).Methods("GET")
	acc.HandleFunc("/settings/", middleware.RequireAuth(accountService, accounts.SettingsSubmit)).Methods("POST")
	acc.HandleFunc("/settings/password/", middleware.RequireAuth(accountService, accounts.PasswordChangeForm)).Methods("GET")
	acc.HandleFunc("/settings/password/", middleware.RequireAuth(accountService, accounts.PasswordChangeSubmit)).Methods("POST")
	acc.HandleFunc("/settings/password/done/", middleware.RequireAuth(accountService, accounts.PasswordChangeDone)).Methods("GET")

	acc.HandleFunc("/reset/", accounts.PasswordResetForm).Methods("GET")
	acc.HandleFunc("/reset/", accounts.PasswordResetSubmit).Methods("POST")
	acc.HandleFunc("/reset/done/", accounts.PasswordResetDone).Methods("GET")
	acc.HandleFunc("/reset/complete/", accounts.PasswordResetComplete).Methods("GET")
	acc.HandleFunc("/reset/{token}/", accounts.PasswordResetConfirmForm).Methods("GET")
	acc.HandleFunc("/reset/{token}/", accounts.PasswordResetConfirmSubmit).Methods("POST")

	return router, nil
}
