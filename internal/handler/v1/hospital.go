package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arogyanet/hospital-registry/internal/domain/hospital"
	"github.com/arogyanet/hospital-registry/internal/service"
	"github.com/arogyanet/hospital-registry/pkg/metrics"
)

type addressPayload struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type locationPayload struct {
	Coordinates []float64 `json:"coordinates"`
}

type contactPayload struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type createHospitalRequest struct {
	Name     string           `json:"name"`
	Address  *addressPayload  `json:"address"`
	Location *locationPayload `json:"location"`
	Contact  *contactPayload  `json:"contact"`
}

type updateHospitalRequest struct {
	Name     *string          `json:"name"`
	Address  *addressPayload  `json:"address"`
	Location *locationPayload `json:"location"`
	Contact  *contactPayload  `json:"contact"`
}

type HospitalHandler struct {
	svc       *service.HospitalService
	collector *metrics.Collector
	log       *zap.Logger
}

func NewHospitalHandler(svc *service.HospitalService, collector *metrics.Collector, log *zap.Logger) *HospitalHandler {
	return &HospitalHandler{
		svc:       svc,
		collector: collector,
		log:       log,
	}
}

func (h *HospitalHandler) Create(c *gin.Context) {
	var req createHospitalRequest
	if !bindStrictJSON(c, &req) {
		return
	}

	created, err := h.svc.CreateHospital(c.Request.Context(), toCreateCommand(&req))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	h.collector.HospitalsCreatedTotal.Inc()
	respondCreated(c, created)
}

func (h *HospitalHandler) Get(c *gin.Context) {
	found, err := h.svc.GetHospital(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respondOK(c, found)
}

func (h *HospitalHandler) Update(c *gin.Context) {
	var req updateHospitalRequest
	if !bindStrictJSON(c, &req) {
		return
	}

	updated, err := h.svc.UpdateHospital(c.Request.Context(), c.Param("id"), toUpdateCommand(&req))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respondOK(c, updated)
}

func (h *HospitalHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteHospital(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	h.collector.HospitalsDeletedTotal.Inc()
	c.Status(http.StatusNoContent)
}

func toCreateCommand(req *createHospitalRequest) *hospital.CreateHospitalCommand {
	cmd := &hospital.CreateHospitalCommand{Name: req.Name}
	if req.Address != nil {
		cmd.Address = toAddress(req.Address)
	}
	if req.Contact != nil {
		cmd.Contact = toContact(req.Contact)
	}
	if req.Location != nil {
		cmd.Location = &hospital.Location{Coordinates: req.Location.Coordinates}
	}
	return cmd
}

func toUpdateCommand(req *updateHospitalRequest) *hospital.UpdateHospitalCommand {
	cmd := &hospital.UpdateHospitalCommand{Name: req.Name}
	if req.Address != nil {
		cmd.Address = toAddress(req.Address)
	}
	if req.Contact != nil {
		cmd.Contact = toContact(req.Contact)
	}
	if req.Location != nil {
		cmd.Location = &hospital.Location{Coordinates: req.Location.Coordinates}
	}
	return cmd
}

func toAddress(p *addressPayload) *hospital.Address {
	return &hospital.Address{
		Street:  p.Street,
		City:    p.City,
		State:   p.State,
		Pincode: p.Pincode,
	}
}

func toContact(p *contactPayload) *hospital.Contact {
	return &hospital.Contact{
		Phone: p.Phone,
		Email: p.Email,
	}
}
