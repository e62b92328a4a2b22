package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmendes/bedboard/internal/auth"
	"github.com/jmendes/bedboard/internal/models"
	"github.com/jmendes/bedboard/internal/ward"
	"go.uber.org/zap"
)

// registerRoutes sets up the full API surface on the gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hospital Bed Management API is running")
	})
	router.POST("/api/login", handleLogin(opts.Auth))

	authed := router.Group("/api", opts.Auth.Middleware())

	authed.GET("/beds", handleListBeds(opts.Registry))
	authed.POST("/beds", handleAddBed(opts.Registry))
	authed.PATCH("/beds/:id/status", handleBedStatus(opts.Registry))
	authed.DELETE("/beds/:id", handleRemoveBed(opts.Registry))
	authed.POST("/beds/assign", handleAssign(opts.Registry, opts.Log))
	authed.POST("/beds/transfer", handleTransfer(opts.Registry))
	authed.PATCH("/beds/:id/discharge", handleDischarge(opts.Registry))

	authed.GET("/patients", handleFindPatients(opts.Registry))
	authed.GET("/patients/directory", handleDirectory(opts.Registry))
	authed.DELETE("/patients/:id", handlePurge(opts.Registry, opts.Log))

	authed.GET("/queue", handleQueue(opts.Registry))
	authed.POST("/queue/add", handleAddPatient(opts.Registry))
	authed.DELETE("/queue/:id", handleRemovePatient(opts.Registry))

	authed.GET("/system/audit", handleAudit(opts.Registry))

	authed.GET("/events", handleSSE(opts.Hub))
	authed.GET("/stream", handleStream(opts.Hub, opts.Log))
}

// wardStatus maps the core error taxonomy to HTTP status codes.
func wardStatus(err error) int {
	switch {
	case errors.Is(err, ward.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ward.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ward.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func handleLogin(svc *auth.Service) gin.HandlerFunc {
	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
			return
		}
		token, staff, err := svc.Login(req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   token,
			"user":    gin.H{"name": staff.Name, "role": staff.Role},
		})
	}
}

func handleListBeds(reg *ward.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, reg.ListBeds(c.Query("status")))
	}
}

func handleAddBed(reg *ward.Registry) gin.HandlerFunc {
	type addBedRequest struct {
		Ward string `json:"ward"`
	}
	return func(c *gin.Context) {
		var req addBedRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Ward == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ward is required"})
			return
		}
		b, err := reg.AddBed(req.Ward)
		if err != nil {
			c.JSON(wardStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "bed": b})
	}
}

func handleBedStatus(reg *ward.Registry) gin.HandlerFunc {
	type statusRequest struct {
		Status string `json:"status"`
	}
	return func(c *gin.Context) {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
			return
		}
		b, err := reg.SetBedStatus(c.Param("id"), req.Status)
		if err != nil {
			c.JSON(wardStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func handleRemoveBed(reg *ward.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := reg.RemoveBed(c.Param("id")); err != nil {
			c.JSON(wardStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func handleAssign(reg *ward.Registry, log *zap.Logger) gin.HandlerFunc {
	type assignRequest struct {
		PatientID string `json:"patientId"`
		BedID     string `json:"bedId"`
		Needs     string `json:"needs"`
	}
	return func(c *gin.Context) {
		var req assignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		patient, ok := reg.Patient(req.PatientID)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid Patient ID is required for assignment"})
			return
		}

		var (
			bed *models.Bed
			err error
		)
		if req.BedID != "" {
			bed, err = reg.AssignManual(req.BedID, &patient)
		} else {
			if req.Needs == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Patient needs (ward type) are required for smart assignment"})
				return
			}
			bed, err = reg.AssignGreedy(req.Needs, &patient)
		}
		if err != nil {
			c.JSON(wardStatus(err), gin.H{"error": err.Error()})
			return
		}
		if bed == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error":      "No available beds found",
				"suggestion": "Consider transferring patient or waiting.",
			})
			return
		}

		// Orchestration step: the assignment engine never dequeues, the
		// boundary does.
		if !reg.RemovePatient(patient.ID) {
			log.Warn("assigned patient was not in the waiting queue", zap.String("patient", patient.ID))
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Bed assigned successfully",
			"bed":     bed,
		})
	}
}

func handleTransfer(reg *ward.Registry) gin.HandlerFunc {
	type transferRequest struct {
		SourceBedID string `json:"sourceBedId"`
		TargetBedID string `json:"targetBedId"`
	}
	return func(c *gin.Context) {
		var req transferRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.SourceBedID == "" || req.TargetBedID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Source and Target Bed IDs are required"})
			return
		}
		source, target, err := reg.Transfer(req.SourceBedID, req.TargetBedID)
		if err != nil {
			c.JSON(wardStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Transfer successful",
			"sourceBed": source,
			"targetBed": target,
		})
	}
}

func handleDischarge(reg *ward.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := reg.Discharge(c.Param("id"))
		if err != nil {
			c.JSON(wardStatus(err), gin.H{"error": err.Error()})
			return
		}
		// A missing bed is already empty; success either way.
		c.JSON(http.StatusOK, gin.H{"success": true, "bed": b})
	}
}

func handleFindPatients(reg *ward.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, reg.FindPatients(c.Query("query")))
	}
}

func handleDirectory(reg *ward.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, reg.Directory())
	}
}

func handleQueue(reg *ward.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, reg.SortedQueue())
	}
}

func handleAddPatient(reg *ward.Registry) gin.HandlerFunc {
	type addPatientRequest struct {
		Name        string `json:"name"`
		TriageLevel any    `json:"triageLevel"`
		Condition   string `json:"condition"`
	}
	return func(c *gin.Context) {
		var req addPatientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and Triage Level are required"})
			return
		}
		triage, ok := parseTriageLevel(req.TriageLevel)
		if req.Name == "" || !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and Triage Level are required"})
			return
		}
		p, err := reg.AddPatient(ward.AddPatientOpts{
			Name:        req.Name,
			TriageLevel: triage,
			Condition:   req.Condition,
		})
		if err != nil {
			c.JSON(wardStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "patient": p})
	}
}

func handleRemovePatient(reg *ward.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reg.RemovePatient(c.Param("id")) {
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
	}
}

func handlePurge(reg *ward.Registry, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		actor := "unknown"
		if claims, ok := auth.Actor(c); ok {
			actor = claims.Username
		}
		log.Info("purge requested", zap.String("patient", id), zap.String("actor", actor))

		switch reg.Purge(id) {
		case ward.PurgedFromQueue:
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Patient removed from ER Queue"})
		case ward.PurgeDischarged:
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Patient discharged and record purged"})
		default:
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Patient not found",
				"details": "ID " + id + " was not matched in the ER Registry or any active Bed.",
			})
		}
	}
}

func handleAudit(reg *ward.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, reg.Audit())
	}
}

// parseTriageLevel accepts both JSON numbers and numeric strings, the
// way browser clients send them.
func parseTriageLevel(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
