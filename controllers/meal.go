package controllers

import (
	"net/http"
	"strconv"
	"time"

	"mealdesk/auth"
	"mealdesk/models"
	"mealdesk/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// MealController serves the per-user meal selection routes. Every route
// requires an authenticated session.
type MealController struct {
	mealService services.MealService
	logger      *zap.Logger
}

// NewMealController creates a new MealController instance
func NewMealController(mealService services.MealService, logger *zap.Logger) *MealController {
	return &MealController{mealService: mealService, logger: logger}
}

// SelectionResponse is the serialized meal selection.
type SelectionResponse struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"userId"`
	Date       string    `json:"date"`
	MealTime   string    `json:"mealTime"`
	MealType   string    `json:"mealType"`
	DietType   string    `json:"dietType"`
	Status     string    `json:"status"`
	SelectedAt time.Time `json:"selectedAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func mapModelToSelectionResponse(selection *models.MealSelection) SelectionResponse {
	return SelectionResponse{
		ID:         selection.ID,
		UserID:     selection.UserID,
		Date:       selection.Date,
		MealTime:   selection.MealTime,
		MealType:   selection.MealType,
		DietType:   selection.DietType,
		Status:     selection.Status,
		SelectedAt: selection.SelectedAt,
		CreatedAt:  selection.CreatedAt,
		UpdatedAt:  selection.UpdatedAt,
	}
}

func mapModelsToSelectionResponses(selections []models.MealSelection) []SelectionResponse {
	respData := make([]SelectionResponse, 0, len(selections))
	for i := range selections {
		respData = append(respData, mapModelToSelectionResponse(&selections[i]))
	}
	return respData
}

// --- go-restful Route Definitions ---

// RegisterRoutes sets up the meal selection routes for a go-restful WebService.
func (ctl *MealController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/api/meals").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)

	ws.Route(ws.POST("").Filter(auth.AuthFilter()).To(ctl.upsertHandler).
		Doc("Create or overwrite the selection for one date and meal time").
		Metadata(restfulspec.KeyOpenAPITags, []string{"meals"}).
		Reads(services.SelectionInput{}).
		Writes(SelectionResponse{}).
		Returns(http.StatusOK, "Selection stored", SelectionResponse{}).
		Returns(http.StatusBadRequest, "Validation error", nil).
		Returns(http.StatusUnauthorized, "Unauthenticated", nil))

	ws.Route(ws.GET("").Filter(auth.AuthFilter()).To(ctl.listHandler).
		Doc("List all selections of the caller, date then meal time ascending").
		Metadata(restfulspec.KeyOpenAPITags, []string{"meals"}).
		Writes([]SelectionResponse{}).
		Returns(http.StatusOK, "Selections", []SelectionResponse{}).
		Returns(http.StatusUnauthorized, "Unauthenticated", nil))

	ws.Route(ws.GET("/{date}").Filter(auth.AuthFilter()).To(ctl.listByDateHandler).
		Doc("List the caller's selections for one date").
		Param(ws.PathParameter("date", "Date in YYYY-MM-DD form").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"meals"}).
		Writes([]SelectionResponse{}).
		Returns(http.StatusOK, "Selections", []SelectionResponse{}).
		Returns(http.StatusUnauthorized, "Unauthenticated", nil))

	ws.Route(ws.DELETE("/{selection-id}").Filter(auth.AuthFilter()).To(ctl.deleteHandler).
		Doc("Delete one of the caller's selections").
		Param(ws.PathParameter("selection-id", "Identifier of the selection").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"meals"}).
		Returns(http.StatusOK, "Selection removed", MessageResponse{}).
		Returns(http.StatusUnauthorized, "Not the owner", nil).
		Returns(http.StatusNotFound, "Selection not found", nil))
}

// upsertHandler (Handles POST /api/meals)
func (ctl *MealController) upsertHandler(request *restful.Request, response *restful.Response) {
	userID, ok := auth.RequestingUserID(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, MessageResponse{Msg: "Unauthorized: Cannot identify requesting user"}, restful.MIME_JSON)
		return
	}

	input := new(services.SelectionInput)
	if err := request.ReadEntity(input); err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, MessageResponse{Msg: "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}

	selection, err := ctl.mealService.Upsert(userID, input)
	if err != nil {
		writeServiceError(response, ctl.logger, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToSelectionResponse(selection), restful.MIME_JSON)
}

// listHandler (Handles GET /api/meals)
func (ctl *MealController) listHandler(request *restful.Request, response *restful.Response) {
	userID, ok := auth.RequestingUserID(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, MessageResponse{Msg: "Unauthorized: Cannot identify requesting user"}, restful.MIME_JSON)
		return
	}

	selections, err := ctl.mealService.ListForUser(userID)
	if err != nil {
		writeServiceError(response, ctl.logger, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelsToSelectionResponses(selections), restful.MIME_JSON)
}

// listByDateHandler (Handles GET /api/meals/{date})
func (ctl *MealController) listByDateHandler(request *restful.Request, response *restful.Response) {
	userID, ok := auth.RequestingUserID(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, MessageResponse{Msg: "Unauthorized: Cannot identify requesting user"}, restful.MIME_JSON)
		return
	}

	selections, err := ctl.mealService.ListForUserOnDate(userID, request.PathParameter("date"))
	if err != nil {
		writeServiceError(response, ctl.logger, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelsToSelectionResponses(selections), restful.MIME_JSON)
}

// deleteHandler (Handles DELETE /api/meals/{selection-id})
func (ctl *MealController) deleteHandler(request *restful.Request, response *restful.Response) {
	userID, ok := auth.RequestingUserID(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, MessageResponse{Msg: "Unauthorized: Cannot identify requesting user"}, restful.MIME_JSON)
		return
	}

	selectionID, err := strconv.ParseUint(request.PathParameter("selection-id"), 10, 32)
	if err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, MessageResponse{Msg: "Invalid selection ID format"}, restful.MIME_JSON)
		return
	}

	if err := ctl.mealService.Delete(uint(selectionID), userID); err != nil {
		writeServiceError(response, ctl.logger, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, MessageResponse{Msg: "Selection removed"}, restful.MIME_JSON)
}
