package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/middleware"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
)

// Handlers groups every endpoint implementation
type Handlers struct {
	Treatments *TreatmentHandler
	Safety     *SafetyHandler
	Animals    *AnimalHandler
	Medicines  *MedicineHandler
	Farmers    *FarmerHandler
	Dashboard  *DashboardHandler
	Reports    *ReportHandler
	Audit      *AuditHandler
	Health     *HealthHandler
}

// RegisterRoutes mounts the API. auth must authenticate the caller and set
// the identity read by middleware.Identity.
func RegisterRoutes(r *gin.Engine, h Handlers, auth gin.HandlerFunc) {
	farmer := middleware.RequireRole(model.RoleFarmer)
	vet := middleware.RequireRole(model.RoleVet)
	authority := middleware.RequireRole(model.RoleAuthority)
	vetOrAuthority := middleware.RequireRole(model.RoleVet, model.RoleAuthority)
	farmerOrAuthority := middleware.RequireRole(model.RoleFarmer, model.RoleAuthority)

	r.GET("/health", h.Health.GetHealth)
	r.GET("/openapi.json", GetOpenAPI)

	v1 := r.Group("/api/v1")
	v1.GET("/safety/:farmer_id", h.Safety.GetApiV1SafetyFarmerId)

	secured := v1.Group("", auth)

	treatments := secured.Group("/treatments")
	treatments.POST("", farmer, h.Treatments.PostApiV1Treatments)
	treatments.GET("/pending", vetOrAuthority, h.Treatments.GetApiV1TreatmentsPending)
	treatments.GET("/animal/:animal_id", h.Treatments.GetApiV1TreatmentsAnimalAnimalId)
	treatments.GET("/:id", h.Treatments.GetApiV1TreatmentsId)
	treatments.PUT("/:id/diagnose", vet, h.Treatments.PutApiV1TreatmentsIdDiagnose)

	animals := secured.Group("/animals")
	animals.POST("", farmer, h.Animals.PostApiV1Animals)
	animals.GET("/mine", farmer, h.Animals.GetApiV1AnimalsMine)
	animals.GET("/farmer/:farmer_id", h.Animals.GetApiV1AnimalsFarmerFarmerId)
	animals.GET("/withdrawal/:filter", farmer, h.Safety.GetApiV1AnimalsWithdrawalFilter)
	animals.GET("/:id", h.Animals.GetApiV1AnimalsId)
	animals.PUT("/:id", farmer, h.Animals.PutApiV1AnimalsId)
	animals.GET("/:id/withdrawal-status", h.Safety.GetApiV1AnimalsIdWithdrawalStatus)

	medicines := secured.Group("/medicines/authorized")
	medicines.GET("", h.Medicines.GetApiV1MedicinesAuthorized)
	medicines.GET("/:id", h.Medicines.GetApiV1MedicinesAuthorizedId)
	medicines.POST("", authority, h.Medicines.PostApiV1MedicinesAuthorized)
	medicines.PUT("/:id", authority, h.Medicines.PutApiV1MedicinesAuthorizedId)
	medicines.DELETE("/:id", authority, h.Medicines.DeleteApiV1MedicinesAuthorizedId)

	farmers := secured.Group("/farmers")
	farmers.GET("/me", farmer, h.Farmers.GetApiV1FarmersMe)
	farmers.PUT("/me", farmer, h.Farmers.PutApiV1FarmersMe)
	farmers.GET("/:id", farmerOrAuthority, h.Farmers.GetApiV1FarmersId)
	farmers.PUT("/:id/verify", authority, h.Farmers.PutApiV1FarmersIdVerify)

	authorityGroup := secured.Group("/authority", authority)
	authorityGroup.GET("/dashboard/overview", h.Dashboard.GetApiV1AuthorityDashboardOverview)
	authorityGroup.GET("/dashboard/charts", h.Dashboard.GetApiV1AuthorityDashboardCharts)
	authorityGroup.GET("/dashboard/vet-activity", h.Dashboard.GetApiV1AuthorityDashboardVetActivity)
	authorityGroup.GET("/dashboard/daily-treatments", h.Dashboard.GetApiV1AuthorityDashboardDailyTreatments)
	authorityGroup.GET("/farmers", h.Dashboard.GetApiV1AuthorityFarmers)
	authorityGroup.GET("/farmers/:farmer_id", h.Safety.GetApiV1AuthorityFarmersFarmerId)
	authorityGroup.GET("/vets", h.Dashboard.GetApiV1AuthorityVets)
	authorityGroup.GET("/animals", h.Dashboard.GetApiV1AuthorityAnimals)
	authorityGroup.GET("/treatments", h.Dashboard.GetApiV1AuthorityTreatments)
	authorityGroup.GET("/audit/:resource_type/:resource_id", h.Audit.GetApiV1AuthorityAudit)

	reports := secured.Group("/reports", farmerOrAuthority)
	reports.POST("/withdrawal", h.Reports.PostApiV1ReportsWithdrawal)
	reports.GET("/farmer/:farmer_id", h.Reports.GetApiV1ReportsFarmerFarmerId)
	reports.GET("/:id", h.Reports.GetApiV1ReportsId)
}
