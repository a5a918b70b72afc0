package apiv1

import (
	"time"

	"github.com/ManuelReschke/CleanCity/app/models"
)

// Pong is the answer of GET /ping
type Pong struct {
	Ping string `json:"ping"`
}

type createZoneRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=150"`
	DistrictID  uint    `json:"district_id" validate:"required"`
	Capacity    int     `json:"capacity" validate:"gt=0"`
	CurrentFill int     `json:"current_fill" validate:"gte=0"`
	ZoneType    string  `json:"zone_type" validate:"omitempty,oneof=residential commercial industrial public"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	Latitude    float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

type priorityRequest struct {
	Priority string `json:"priority" validate:"required,oneof=low medium high"`
}

type submitReportRequest struct {
	ZoneID      uint     `json:"zone_id" validate:"required"`
	FillLevel   float64  `json:"fill_level" validate:"gte=0,lte=100"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Description string   `json:"description" validate:"max=1000"`
	Photos      []string `json:"photos" validate:"max=5,dive,required"`
	Latitude    float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64  `json:"longitude" validate:"gte=-180,lte=180"`
}

type editReportRequest struct {
	FillLevel   *float64 `json:"fill_level" validate:"omitempty,gte=0,lte=100"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	AddPhotos   []string `json:"add_photos" validate:"max=5,dive,required"`
}

type reviewRequest struct {
	Points  *int   `json:"points" validate:"omitempty,gte=0"`
	Comment string `json:"comment" validate:"max=1000"`
}

type planTourRequest struct {
	ScheduledAt            time.Time `json:"scheduled_at" validate:"required"`
	TeamID                 uint      `json:"team_id" validate:"required"`
	VehicleID              uint      `json:"vehicle_id" validate:"required"`
	ZoneIDs                []uint    `json:"zone_ids" validate:"required,min=1,dive,gt=0"`
	EstimatedDurationHours float64   `json:"estimated_duration_hours" validate:"gte=0,lte=24"`
	EstimatedDistanceKm    float64   `json:"estimated_distance_km" validate:"gte=0"`
}

type createTeamRequest struct {
	Name        string `json:"name" validate:"required,max=150"`
	MemberCount int    `json:"member_count" validate:"gte=1"`
}

type createVehicleRequest struct {
	Plate    string `json:"plate" validate:"required,max=20"`
	Capacity int    `json:"capacity" validate:"gt=0"`
}

// TourResponse adds the derived end time to a tour.
type TourResponse struct {
	Tour             *models.Tour `json:"tour"`
	EstimatedEndTime string       `json:"estimated_end_time"`
}

// QueueStatus summarises the redis job queue.
type QueueStatus struct {
	Pending    int64            `json:"pending"`
	Processing int64            `json:"processing"`
	StoredJobs int              `json:"stored_jobs"`
	Stats      map[string]int64 `json:"stats"`
}
