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

// UserController serves the admin-only routes: the user roster and the
// meal statistics report.
type UserController struct {
	userService services.UserService
	mealService services.MealService
	logger      *zap.Logger
}

// NewUserController creates a new UserController instance
func NewUserController(userService services.UserService, mealService services.MealService, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, mealService: mealService, logger: logger}
}

// UserResponse is the roster entry, password hash excluded.
type UserResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	EmployeeID string    `json:"employeeId"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

func mapModelToUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Username:   user.Username,
		EmployeeID: user.EmployeeID,
		Department: user.Department,
		Role:       user.Role,
		CreatedAt:  user.CreatedAt,
	}
}

// --- go-restful Route Definitions ---

// RegisterRoutes sets up the admin user routes for a go-restful WebService.
func (ctl *UserController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/api/users").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)

	ws.Route(ws.GET("").Filter(auth.AuthFilter()).Filter(auth.AdminFilter()).To(ctl.listUsersHandler).
		Doc("List all users (admin only)").
		Metadata(restfulspec.KeyOpenAPITags, []string{"users"}).
		Writes([]UserResponse{}).
		Returns(http.StatusOK, "Users", []UserResponse{}).
		Returns(http.StatusUnauthorized, "Unauthenticated", nil).
		Returns(http.StatusForbidden, "Admin access required", nil))

	ws.Route(ws.GET("/meal-stats").Filter(auth.AuthFilter()).Filter(auth.AdminFilter()).To(ctl.mealStatsHandler).
		Doc("Aggregated meal counts per date and meal time (admin only)").
		Param(ws.QueryParameter("startDate", "Inclusive lower date bound (YYYY-MM-DD)").DataType("string")).
		Param(ws.QueryParameter("endDate", "Inclusive upper date bound (YYYY-MM-DD)").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"users"}).
		Writes([]services.StatRow{}).
		Returns(http.StatusOK, "Statistics", []services.StatRow{}).
		Returns(http.StatusUnauthorized, "Unauthenticated", nil).
		Returns(http.StatusForbidden, "Admin access required", nil))
}

// listUsersHandler (Handles GET /api/users)
func (ctl *UserController) listUsersHandler(request *restful.Request, response *restful.Response) {
	users, err := ctl.userService.ListUsers()
	if err != nil {
		writeServiceError(response, ctl.logger, err)
		return
	}

	respData := make([]UserResponse, 0, len(users))
	for i := range users {
		respData = append(respData, mapModelToUserResponse(&users[i]))
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, respData, restful.MIME_JSON)
}

// mealStatsHandler (Handles GET /api/users/meal-stats)
func (ctl *UserController) mealStatsHandler(request *restful.Request, response *restful.Response) {
	startDate := request.QueryParameter("startDate")
	endDate := request.QueryParameter("endDate")

	stats, err := ctl.mealService.MealStats(startDate, endDate)
	if err != nil {
		writeServiceError(response, ctl.logger, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, stats, restful.MIME_JSON)
}
