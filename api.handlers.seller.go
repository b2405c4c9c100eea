package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// CreateSeller registers a new seller.
// @Summary      Create seller
// @Tags         sellers
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateSellerInput  true  "Seller payload"
// @Success      201      {object}  SellerView
// @Failure      400      {object}  APIError
// @Failure      422      {object}  APIError
// @Failure      500      {object}  APIError
// @Router       /api/v1/seller/ [post]
func (api *APIHandler) CreateSeller(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input CreateSellerInput
	if err := DecodeRequestBody(w, r, &input); err != nil {
		api.sendError(w, r, decodeStatus(err), "failed to decode the seller", err)
		return
	}

	seller, err := api.validator.ValidateCreateSellerInput(input)
	if err != nil {
		api.sendError(w, r, errorStatus(err), "invalid seller", err)
		return
	}

	seller, err = api.sellerService.Add(r.Context(), seller)
	if err != nil {
		api.sendError(w, r, errorStatus(err), "failed to create the seller", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create seller",
		zap.Int64("seller.id", seller.ID),
		zap.String("request.id", RequestIDFromContext(r.Context())),
	)
	api.sendResponse(w, r, http.StatusCreated, seller.View())
}

// GetAllSellers lists every seller without their books.
// @Summary      List sellers
// @Tags         sellers
// @Produce      json
// @Success      200  {object}  SellersList
// @Failure      500  {object}  APIError
// @Router       /api/v1/seller/ [get]
func (api *APIHandler) GetAllSellers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sellers, err := api.sellerService.GetAll(r.Context())
	if err != nil {
		api.sendError(w, r, errorStatus(err), "failed to get all sellers", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, NewSellersList(sellers))
}

// GetOneSeller fetches a seller along with the books it owns.
// @Summary      Get seller
// @Tags         sellers
// @Produce      json
// @Param        seller_id  path      int  true  "Seller ID"
// @Success      200        {object}  SellerWithBooksView
// @Failure      404        {object}  APIError
// @Failure      422        {object}  APIError
// @Router       /api/v1/seller/{seller_id} [get]
func (api *APIHandler) GetOneSeller(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ReadIDParam(ps, "seller_id")
	if err != nil {
		api.sendError(w, r, errorStatus(err), "seller id provided is not valid", err)
		return
	}

	seller, err := api.sellerService.GetOne(r.Context(), id)
	if err != nil {
		api.sendError(w, r, errorStatus(err), "failed to get the seller", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, seller.ViewWithBooks())
}

// UpdateSeller replaces the names and email of a seller.
// @Summary      Update seller
// @Tags         sellers
// @Accept       json
// @Produce      json
// @Param        seller_id  path      int                true  "Seller ID"
// @Param        payload    body      UpdateSellerInput  true  "Seller payload"
// @Success      200        {object}  SellerView
// @Failure      400        {object}  APIError
// @Failure      404        {object}  APIError
// @Failure      422        {object}  APIError
// @Router       /api/v1/seller/{seller_id} [put]
func (api *APIHandler) UpdateSeller(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ReadIDParam(ps, "seller_id")
	if err != nil {
		api.sendError(w, r, errorStatus(err), "seller id provided is not valid", err)
		return
	}

	var input UpdateSellerInput
	if err = DecodeRequestBody(w, r, &input); err != nil {
		api.sendError(w, r, decodeStatus(err), "failed to decode the seller", err)
		return
	}

	seller, err := api.validator.ValidateUpdateSellerInput(input)
	if err != nil {
		api.sendError(w, r, errorStatus(err), "invalid seller", err)
		return
	}

	seller, err = api.sellerService.Update(r.Context(), id, seller)
	if err != nil {
		api.sendError(w, r, errorStatus(err), "failed to update the seller", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to update seller",
		zap.Int64("seller.id", id),
		zap.String("request.id", RequestIDFromContext(r.Context())),
	)
	api.sendResponse(w, r, http.StatusOK, seller.View())
}

// DeleteOneSeller removes a seller and all of its books.
// @Summary      Delete seller
// @Tags         sellers
// @Param        seller_id  path  int  true  "Seller ID"
// @Success      204
// @Failure      404  {object}  APIError
// @Router       /api/v1/seller/{seller_id} [delete]
func (api *APIHandler) DeleteOneSeller(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ReadIDParam(ps, "seller_id")
	if err != nil {
		api.sendError(w, r, errorStatus(err), "seller id provided is not valid", err)
		return
	}

	if err = api.sellerService.Delete(r.Context(), id); err != nil {
		api.sendError(w, r, errorStatus(err), "failed to delete the seller", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to delete seller",
		zap.Int64("seller.id", id),
		zap.String("request.id", RequestIDFromContext(r.Context())),
	)
	if err = WriteNoContent(r.Context(), w); err != nil {
		api.logger.Error("failed to send response", zap.Error(err))
	}
}
