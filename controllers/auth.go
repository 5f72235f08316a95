package controllers

import (
	"net/http"
	"time"

	"mealdesk/auth"
	"mealdesk/models"
	"mealdesk/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// AuthController serves registration, login, logout and the
// current-user lookup. It owns the session cookie lifecycle.
type AuthController struct {
	userService  services.UserService
	logger       *zap.Logger
	cookieSecure bool
}

// NewAuthController creates a new AuthController instance
func NewAuthController(userService services.UserService, logger *zap.Logger, cookieSecure bool) *AuthController {
	return &AuthController{userService: userService, logger: logger, cookieSecure: cookieSecure}
}

// LoginInput is the login request body.
type LoginInput struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// SessionUser is the user shape returned alongside a fresh session.
type SessionUser struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SessionResponse wraps the session user, matching the login/register
// response shape.
type SessionResponse struct {
	User SessionUser `json:"user"`
}

// CurrentUserResponse is the full profile, password hash excluded.
type CurrentUserResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	EmployeeID string    `json:"employeeId"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

// --- go-restful Route Definitions ---

// RegisterRoutes sets up the auth routes for a go-restful WebService.
func (ctl *AuthController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/api/auth").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)

	ws.Route(ws.POST("/register").To(ctl.registerHandler).
		Doc("Register a new user and open a session").
		Metadata(restfulspec.KeyOpenAPITags, []string{"auth"}).
		Reads(services.RegisterInput{}).
		Returns(http.StatusOK, "User registered, session cookie set", SessionResponse{}).
		Returns(http.StatusBadRequest, "Invalid request body", nil).
		Returns(http.StatusConflict, "Username or employee id already exists", nil))

	ws.Route(ws.POST("/login").To(ctl.loginHandler).
		Doc("Authenticate user and open a session").
		Metadata(restfulspec.KeyOpenAPITags, []string{"auth"}).
		Reads(LoginInput{}).
		Returns(http.StatusOK, "Session cookie set", SessionResponse{}).
		Returns(http.StatusBadRequest, "Invalid credentials", nil))

	ws.Route(ws.GET("/user").Filter(auth.AuthFilter()).To(ctl.currentUserHandler).
		Doc("Get the authenticated user").
		Metadata(restfulspec.KeyOpenAPITags, []string{"auth"}).
		Writes(CurrentUserResponse{}).
		Returns(http.StatusOK, "Current user", CurrentUserResponse{}).
		Returns(http.StatusUnauthorized, "Unauthenticated", nil))

	ws.Route(ws.POST("/logout").To(ctl.logoutHandler).
		Doc("Clear the session cookie").
		Metadata(restfulspec.KeyOpenAPITags, []string{"auth"}).
		Returns(http.StatusOK, "Logged out", MessageResponse{}))
}

// registerHandler (Handles POST /api/auth/register)
func (ctl *AuthController) registerHandler(request *restful.Request, response *restful.Response) {
	input := new(services.RegisterInput)
	if err := request.ReadEntity(input); err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, MessageResponse{Msg: "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}

	user, err := ctl.userService.Register(input)
	if err != nil {
		writeServiceError(response, ctl.logger, err)
		return
	}

	// Registration always opens a one-day session.
	if !ctl.openSession(response, user, false) {
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, sessionResponseFor(user), restful.MIME_JSON)
}

// loginHandler (Handles POST /api/auth/login)
func (ctl *AuthController) loginHandler(request *restful.Request, response *restful.Response) {
	input := new(LoginInput)
	if err := request.ReadEntity(input); err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, MessageResponse{Msg: "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}

	if input.Username == "" || input.Password == "" {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, MessageResponse{Msg: "Username and password are required"}, restful.MIME_JSON)
		return
	}

	user, err := ctl.userService.Authenticate(input.Username, input.Password)
	if err != nil {
		writeServiceError(response, ctl.logger, err)
		return
	}

	if !ctl.openSession(response, user, input.RememberMe) {
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, sessionResponseFor(user), restful.MIME_JSON)
}

// currentUserHandler (Handles GET /api/auth/user)
func (ctl *AuthController) currentUserHandler(request *restful.Request, response *restful.Response) {
	userID, ok := auth.RequestingUserID(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, MessageResponse{Msg: "Unauthorized: Cannot identify requesting user"}, restful.MIME_JSON)
		return
	}

	user, err := ctl.userService.GetByID(userID)
	if err != nil {
		writeServiceError(response, ctl.logger, err)
		return
	}

	respData := CurrentUserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Username:   user.Username,
		EmployeeID: user.EmployeeID,
		Department: user.Department,
		Role:       user.Role,
		CreatedAt:  user.CreatedAt,
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, respData, restful.MIME_JSON)
}

// logoutHandler (Handles POST /api/auth/logout)
func (ctl *AuthController) logoutHandler(request *restful.Request, response *restful.Response) {
	http.SetCookie(response, auth.ExpiredSessionCookie(ctl.cookieSecure))
	_ = response.WriteHeaderAndJson(http.StatusOK, MessageResponse{Msg: "Logged out successfully"}, restful.MIME_JSON)
}

// openSession issues a token and sets the session cookie. Returns false
// after writing an error response when token generation fails.
func (ctl *AuthController) openSession(response *restful.Response, user *models.User, rememberMe bool) bool {
	ttl := auth.SessionTTL(rememberMe)
	token, err := auth.GenerateToken(user, ttl)
	if err != nil {
		ctl.logger.Error("Could not generate token", zap.Error(err))
		_ = response.WriteHeaderAndJson(http.StatusInternalServerError, MessageResponse{Msg: "Server error"}, restful.MIME_JSON)
		return false
	}
	http.SetCookie(response, auth.NewSessionCookie(token, ttl, ctl.cookieSecure))
	return true
}

func sessionResponseFor(user *models.User) SessionResponse {
	return SessionResponse{User: SessionUser{
		ID:       user.ID,
		Name:     user.Name,
		Username: user.Username,
		Role:     user.Role,
	}}
}
