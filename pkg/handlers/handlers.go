package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"movie-watchlist/pkg/auth"
	"movie-watchlist/pkg/database"
	"movie-watchlist/pkg/models"
)

const ctxUserKey = "current_user"

// Handler carries the application context: storage handle, auth service and
// logger are injected once at startup.
type Handler struct {
	db   *gorm.DB
	auth *auth.Service
	log  *logrus.Logger
}

func New(db *gorm.DB, authSvc *auth.Service, log *logrus.Logger) *Handler {
	return &Handler{db: db, auth: authSvc, log: log}
}

// Register wires all routes. Static paths win over the greeting param route,
// so /me, /login etc. are never swallowed by it.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.List)
	r.POST("/", h.requireAuth, h.CreateMovie)

	r.GET("/me", h.Me)

	r.GET("/movie/edit/:id", h.requireAuth, h.EditForm)
	r.POST("/movie/edit/:id", h.requireAuth, h.UpdateMovie)
	r.POST("/movie/delete/:id", h.requireAuth, h.DeleteMovie)

	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/logout", h.requireAuth, h.Logout)
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.RegisterUser)
	r.GET("/settings", h.requireAuth, h.SettingsForm)
	r.POST("/settings", h.requireAuth, h.UpdateSettings)

	// Greeting echo; registered last so every static sibling wins.
	r.GET("/:username", h.Greet)

	r.NoRoute(h.NotFound)
}

type credentialsForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type movieForm struct {
	Title string `form:"title" json:"title"`
	Year  string `form:"year" json:"year"`
}

type settingsForm struct {
	Name string `form:"name" json:"name"`
}

// identity resolves the session cookie to a user. A nil user with nil error
// means the request is anonymous; a non-nil error is an unexpected storage
// failure.
func (h *Handler) identity(c *gin.Context) (*models.User, error) {
	token, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil, nil
	}
	user, err := h.auth.CurrentIdentity(token)
	if errors.Is(err, auth.ErrUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// requireAuth guards the mutating routes: anonymous requests are bounced to
// the login view instead of executing.
func (h *Handler) requireAuth(c *gin.Context) {
	user, err := h.identity(c)
	if err != nil {
		h.serverError(c, err)
		c.Abort()
		return
	}
	if user == nil {
		setFlash(c, "Please log in first.")
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return
	}
	c.Set(ctxUserKey, user)
}

func currentUser(c *gin.Context) *models.User {
	u, _ := c.Get(ctxUserKey)
	user, _ := u.(*models.User)
	return user
}

// List shows the watchlist of the authenticated user, or the admin demo list
// for anonymous visitors.
func (h *Handler) List(c *gin.Context) {
	user, err := h.identity(c)
	if err != nil {
		h.serverError(c, err)
		return
	}
	owner := database.AdminUsername
	if user != nil {
		owner = user.Username
	}

	var movies []models.Movie
	if err := h.db.Where("belongs_to = ?", owner).Order("id").Find(&movies).Error; err != nil {
		h.serverError(c, err)
		return
	}

	resp := gin.H{"username": owner, "movies": movies}
	if user != nil {
		resp["name"] = user.Name
	}
	if flash := takeFlash(c); flash != "" {
		resp["flash"] = flash
	}
	c.JSON(http.StatusOK, resp)
}

// CreateMovie adds a movie to the current user's list.
func (h *Handler) CreateMovie(c *gin.Context) {
	user := currentUser(c)

	var form movieForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, "Invalid input.")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if err := models.ValidateMovieFields(form.Title, form.Year); err != nil {
		setFlash(c, "Invalid input.")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	movie := models.Movie{Title: form.Title, Year: form.Year, BelongsTo: user.Username}
	if err := h.db.Create(&movie).Error; err != nil {
		h.serverError(c, err)
		return
	}
	setFlash(c, "Item created.")
	c.Redirect(http.StatusSeeOther, "/")
}

// EditForm returns the movie being edited. Ownership is deliberately not
// checked here or in UpdateMovie; any authenticated user may edit any movie
// by id, matching the original behavior.
func (h *Handler) EditForm(c *gin.Context) {
	movie, ok := h.findMovie(c)
	if !ok {
		return
	}
	resp := gin.H{"movie": movie}
	if flash := takeFlash(c); flash != "" {
		resp["flash"] = flash
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateMovie mutates title and year of an existing movie in one commit.
func (h *Handler) UpdateMovie(c *gin.Context) {
	var form movieForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, "Invalid input.")
		c.Redirect(http.StatusSeeOther, c.Request.URL.Path)
		return
	}

	id, ok := movieID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var movie models.Movie
		if err := tx.First(&movie, id).Error; err != nil {
			return err
		}
		if err := models.ValidateMovieFields(form.Title, form.Year); err != nil {
			return err
		}
		movie.Title = form.Title
		movie.Year = form.Year
		return tx.Save(&movie).Error
	})
	switch {
	case gorm.IsRecordNotFoundError(err):
		h.NotFound(c)
	case errors.Is(err, models.ErrInvalidField):
		setFlash(c, "Invalid input.")
		c.Redirect(http.StatusSeeOther, c.Request.URL.Path)
	case err != nil:
		h.serverError(c, err)
	default:
		setFlash(c, "Item updated.")
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// DeleteMovie removes a movie by id, regardless of owner.
func (h *Handler) DeleteMovie(c *gin.Context) {
	id, ok := movieID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	res := h.db.Delete(&models.Movie{}, "id = ?", id)
	if res.Error != nil {
		h.serverError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		h.NotFound(c)
		return
	}
	setFlash(c, "Item deleted.")
	c.Redirect(http.StatusSeeOther, "/")
}

// LoginForm renders the login prompt.
func (h *Handler) LoginForm(c *gin.Context) {
	resp := gin.H{"prompt": "login"}
	if flash := takeFlash(c); flash != "" {
		resp["flash"] = flash
	}
	c.JSON(http.StatusOK, resp)
}

// Login establishes a session for valid credentials.
func (h *Handler) Login(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil || form.Username == "" || form.Password == "" {
		setFlash(c, "Invalid input.")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	token, err := h.auth.Login(form.Username, form.Password)
	switch {
	case errors.Is(err, auth.ErrNotFound):
		setFlash(c, "Account does not exist.")
		c.Redirect(http.StatusSeeOther, "/register")
	case errors.Is(err, auth.ErrInvalidCredentials):
		setFlash(c, "Invalid username or password.")
		c.Redirect(http.StatusSeeOther, "/login")
	case err != nil:
		h.serverError(c, err)
	default:
		setSessionCookie(c, token)
		setFlash(c, "Login success.")
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// Logout drops the session cookie. Logging out twice is harmless; the second
// request is anonymous and gets bounced to the login view by requireAuth.
func (h *Handler) Logout(c *gin.Context) {
	clearSessionCookie(c)
	setFlash(c, "Goodbye.")
	c.Redirect(http.StatusSeeOther, "/")
}

// RegisterForm renders the registration prompt.
func (h *Handler) RegisterForm(c *gin.Context) {
	resp := gin.H{"prompt": "register"}
	if flash := takeFlash(c); flash != "" {
		resp["flash"] = flash
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterUser creates an account and sends the user to the login view.
func (h *Handler) RegisterUser(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, "Invalid input.")
		c.Redirect(http.StatusSeeOther, "/register")
		return
	}

	_, err := h.auth.Register(form.Username, form.Password)
	switch {
	case errors.Is(err, auth.ErrValidation):
		setFlash(c, "Invalid input.")
		c.Redirect(http.StatusSeeOther, "/register")
	case errors.Is(err, auth.ErrConflict):
		setFlash(c, "Username already taken.")
		c.Redirect(http.StatusSeeOther, "/register")
	case err != nil:
		h.serverError(c, err)
	default:
		setFlash(c, "Registration succeeded, please login.")
		c.Redirect(http.StatusSeeOther, "/login")
	}
}

// SettingsForm shows the current display name.
func (h *Handler) SettingsForm(c *gin.Context) {
	user := currentUser(c)
	resp := gin.H{"name": user.Name, "username": user.Username}
	if flash := takeFlash(c); flash != "" {
		resp["flash"] = flash
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateSettings changes the display name of the current user.
func (h *Handler) UpdateSettings(c *gin.Context) {
	user := currentUser(c)

	var form settingsForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, "Invalid input.")
		c.Redirect(http.StatusSeeOther, "/settings")
		return
	}

	err := h.auth.UpdateName(user.Username, form.Name)
	switch {
	case errors.Is(err, auth.ErrValidation):
		setFlash(c, "Invalid input.")
		c.Redirect(http.StatusSeeOther, "/settings")
	case err != nil:
		h.serverError(c, err)
	default:
		setFlash(c, "Settings updated.")
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// Greet echoes the visitor name from the path. No lookup happens.
func (h *Handler) Greet(c *gin.Context) {
	c.String(http.StatusOK, "hello visitor %s", c.Param("username"))
}

// Me is the static profile view.
func (h *Handler) Me(c *gin.Context) {
	c.String(http.StatusOK, "a developer named localh0st")
}

// NotFound is the fallback for unknown routes and missing movie ids.
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// findMovie loads the movie addressed by the :id param, rendering the 404
// fallback when absent.
func (h *Handler) findMovie(c *gin.Context) (*models.Movie, bool) {
	id, ok := movieID(c)
	if !ok {
		h.NotFound(c)
		return nil, false
	}
	var movie models.Movie
	err := h.db.First(&movie, id).Error
	if gorm.IsRecordNotFoundError(err) {
		h.NotFound(c)
		return nil, false
	}
	if err != nil {
		h.serverError(c, err)
		return nil, false
	}
	return &movie, true
}

func movieID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
