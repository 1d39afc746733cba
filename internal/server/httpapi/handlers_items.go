package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dkarklins/tradepost/internal/server/models"
	"github.com/dkarklins/tradepost/internal/server/services"
	"github.com/gorilla/mux"
)

// maxUploadBytes bounds how much of a multipart body is held in memory.
const maxUploadBytes = 32 << 20

type itemResponse struct {
	baseResponse
	Item *models.Item `json:"item"`
}

type itemListResponse struct {
	baseResponse
	PostItems []*models.Item `json:"postitems"`
}

type itemDetailResponse struct {
	baseResponse
	Item    *models.Item     `json:"item"`
	Answers []*models.Answer `json:"answers"`
}

type answerResponse struct {
	baseResponse
	NewMessage *models.Answer `json:"newMessage"`
}

type deleteItemRequest struct {
	ItemID string `json:"item_id"`
}

type submitAnswerRequest struct {
	ItemID    string `json:"itemId"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	GivenBy   string `json:"givenBy"`
	BelongsTo string `json:"belongsTo"`
}

type confirmResponseRequest struct {
	Response string `json:"response"`
}

// storePictures runs every uploaded "itemPictures" part through the upload
// adapter and returns the stored-file references in upload order.
func (s *HTTPServer) storePictures(r *http.Request) ([]models.Picture, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	var pictures []models.Picture
	for _, header := range r.MultipartForm.File["itemPictures"] {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		key, err := s.uploader.Save(r.Context(), header.Filename, file)
		file.Close()
		if err != nil {
			return nil, err
		}
		pictures = append(pictures, models.Picture{Img: key})
	}
	return pictures, nil
}

func (s *HTTPServer) handlePostItem(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "You are not authorized to view this content")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "Please fill all required fields")
		return
	}

	pictures, err := s.storePictures(r)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	item := &models.Item{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Question:    r.FormValue("question"),
		Type:        r.FormValue("type"),
		Pictures:    pictures,
	}

	created, err := s.items.CreateItem(r.Context(), user, item)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	s.logger.Info(r.Context(), "item posted", "item_id", created.ID, "user_id", user.ID)
	s.writeJSON(w, http.StatusCreated, itemResponse{
		baseResponse: okResponse("Item posted successfully!"),
		Item:         created,
	})
}

func (s *HTTPServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.ListItems(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	s.writeJSON(w, http.StatusOK, itemListResponse{
		baseResponse: baseResponse{Success: true},
		PostItems:    items,
	})
}

func (s *HTTPServer) handleItemDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	item, answers, err := s.items.GetItemDetail(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "Item not found")
		return
	}

	s.writeJSON(w, http.StatusOK, itemDetailResponse{
		baseResponse: baseResponse{Success: true},
		Item:         item,
		Answers:      answers,
	})
}

// formField returns the first value for key, or nil when the form does not
// carry the key at all. The distinction keeps omitted fields untouched.
func formField(form map[string][]string, key string) *string {
	if vals, ok := form[key]; ok && len(vals) > 0 {
		return &vals[0]
	}
	return nil
}

// handleEditItem applies only the fields present in the form; omitted fields
// keep their stored values. Fresh uploads win over the client's
// olditemPictures list; whichever is present fully replaces the picture set.
func (s *HTTPServer) handleEditItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "Please fill all required fields")
		return
	}

	pictures, err := s.storePictures(r)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	form := r.MultipartForm.Value
	upd := services.ItemUpdate{
		ID:          r.FormValue("id"),
		Name:        formField(form, "name"),
		Description: formField(form, "description"),
		Question:    formField(form, "question"),
		Type:        formField(form, "type"),
	}

	if pictures != nil {
		upd.Pictures = pictures
		upd.ReplacePictures = true
	} else if old, ok := form["olditemPictures"]; ok {
		for _, img := range old {
			upd.Pictures = append(upd.Pictures, models.Picture{Img: img})
		}
		upd.ReplacePictures = true
	}

	var requesterID string
	if user, ok := userFromContext(r.Context()); ok {
		requesterID = user.ID
	}

	updated, err := s.items.EditItem(r.Context(), requesterID, upd)
	if err != nil {
		s.writeServiceError(w, r, err, "Item not found")
		return
	}

	s.writeJSON(w, http.StatusOK, itemResponse{
		baseResponse: okResponse("Item updated successfully"),
		Item:         updated,
	})
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	var req deleteItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		s.writeError(w, http.StatusBadRequest, "Please fill all required fields")
		return
	}

	var requesterID string
	if user, ok := userFromContext(r.Context()); ok {
		requesterID = user.ID
	}

	if err := s.items.DeleteItem(r.Context(), requesterID, req.ItemID); err != nil {
		s.writeServiceError(w, r, err, "Item not found")
		return
	}

	s.logger.Info(r.Context(), "item deleted", "item_id", req.ItemID)
	s.writeJSON(w, http.StatusOK, okResponse("Item deleted successfully"))
}

func (s *HTTPServer) handleGetNumber(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	number, err := s.users.GetNumber(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "User not found")
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		baseResponse
		Number string `json:"number"`
	}{baseResponse{Success: true}, number})
}

func (s *HTTPServer) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Please fill all required fields")
		return
	}

	answer := &models.Answer{
		ItemID:    req.ItemID,
		Question:  req.Question,
		Answer:    req.Answer,
		GivenBy:   req.GivenBy,
		BelongsTo: req.BelongsTo,
	}

	created, err := s.items.SubmitAnswer(r.Context(), answer)
	if err != nil {
		s.writeServiceError(w, r, err, "Item not found")
		return
	}

	s.writeJSON(w, http.StatusCreated, answerResponse{
		baseResponse: okResponse("Answer submitted successfully"),
		NewMessage:   created,
	})
}

func (s *HTTPServer) handleMyResponses(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	responses, err := s.items.MyResponses(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		baseResponse
		Responses []*models.Answer `json:"responses"`
	}{baseResponse{Success: true}, responses})
}

func (s *HTTPServer) handleMyListings(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	listings, err := s.items.MyListings(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		baseResponse
		Listings []*models.Item `json:"listings"`
	}{baseResponse{Success: true}, listings})
}

func (s *HTTPServer) handleConfirmResponse(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req confirmResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Please fill all required fields")
		return
	}

	if err := s.items.ConfirmResponse(r.Context(), id, req.Response); err != nil {
		s.writeServiceError(w, r, err, "Response not found")
		return
	}

	s.writeJSON(w, http.StatusOK, okResponse("Response confirmed successfully"))
}
