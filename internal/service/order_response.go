package service

import (
	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/dto"
)

func toHistoryResponse(history []*domain.OrderStatusHistory, withActor bool) []dto.StatusHistoryResponse {
	out := make([]dto.StatusHistoryResponse, 0, len(history))
	for _, h := range history {
		entry := dto.StatusHistoryResponse{
			ID:        h.ID,
			Status:    h.Status,
			Stage:     h.Stage,
			Note:      h.Note,
			Location:  h.Location,
			CreatedAt: h.CreatedAt,
		}
		if withActor {
			entry.ChangedBy = h.ChangedBy
		}
		out = append(out, entry)
	}
	return out
}

// toOrderResponse builds the authenticated view, customer fields included
func toOrderResponse(o *domain.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		TrackingCode:     o.TrackingCode,
		UserID:           o.UserID,
		Status:           o.Status,
		CurrentStage:     o.CurrentStage,
		CarMake:          o.CarMake,
		CarModel:         o.CarModel,
		CarYear:          o.CarYear,
		CarVIN:           o.CarVIN,
		CarColor:         o.CarColor,
		CarImageURL:      o.CarImageURL,
		AuctionPrice:     o.AuctionPrice,
		ShippingCost:     o.ShippingCost,
		TotalPrice:       o.TotalPrice,
		CustomerName:     o.CustomerName,
		CustomerEmail:    o.CustomerEmail,
		CustomerPhone:    o.CustomerPhone,
		AuctionSource:    o.AuctionSource,
		LotNumber:        o.LotNumber,
		OriginPort:       o.OriginPort,
		DestinationPort:  o.DestinationPort,
		VesselName:       o.VesselName,
		EstimatedArrival: o.EstimatedArrival,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	if o.History != nil {
		resp.History = toHistoryResponse(o.History, true)
	}
	return resp
}

// toTrackingResponse builds the public view. Customer identity, pricing,
// VIN and the acting staff member are left out.
func toTrackingResponse(o *domain.Order) *dto.TrackingResponse {
	return &dto.TrackingResponse{
		TrackingCode:     o.TrackingCode,
		OrderNumber:      o.OrderNumber,
		Status:           o.Status,
		CurrentStage:     o.CurrentStage,
		CarMake:          o.CarMake,
		CarModel:         o.CarModel,
		CarYear:          o.CarYear,
		CarColor:         o.CarColor,
		CarImageURL:      o.CarImageURL,
		OriginPort:       o.OriginPort,
		DestinationPort:  o.DestinationPort,
		VesselName:       o.VesselName,
		EstimatedArrival: o.EstimatedArrival,
		History:          toHistoryResponse(o.History, false),
		UpdatedAt:        o.UpdatedAt,
	}
}
