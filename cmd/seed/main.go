package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"time"

	"healteex/api/internal/config"
	"healteex/api/internal/database"
	"healteex/api/internal/ids"
	"healteex/api/internal/log"
	"healteex/api/internal/models"
	"healteex/api/internal/repository"
	"healteex/api/internal/security"
)

const defaultPassword = "ChangeMe123!"

func main() {
	seed := flag.Int64("seed", 42, "seed for the forecast demand generator")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	rng := rand.New(rand.NewSource(*seed))

	facilities := repository.NewFacilityRepository(dbPool)
	medicines := repository.NewMedicineRepository(dbPool)
	users := repository.NewUserRepository(dbPool)
	transactions := repository.NewTransactionRepository(dbPool)
	snapshots := repository.NewSnapshotRepository(dbPool)
	forecasts := repository.NewForecastRepository(dbPool)
	alerts := repository.NewAlertRepository(dbPool)
	integrations := repository.NewIntegrationRepository(dbPool)

	facilityByCode, err := seedFacilities(ctx, facilities)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed facilities failed")
	}
	logger.Info().Int("count", len(facilityByCode)).Msg("facilities seeded")

	medicineByName, medicineOrder, err := seedMedicines(ctx, medicines)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed medicines failed")
	}
	logger.Info().Int("count", len(medicineByName)).Msg("medicines seeded")

	userByName, err := seedUsers(ctx, users, facilityByCode)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed users failed")
	}
	logger.Info().Int("count", len(userByName)).Str("password", defaultPassword).Msg("users seeded")

	if err := seedTransactions(ctx, transactions, facilityByCode, medicineByName, userByName); err != nil {
		logger.Fatal().Err(err).Msg("seed transactions failed")
	}
	logger.Info().Msg("transactions seeded")

	facilityOrder := []string{"LAG-GEN", "ABJ-CLN", "KAN-WHS", "ENU-PHM"}
	if err := seedSnapshots(ctx, snapshots, facilityByCode, facilityOrder, medicineByName, medicineOrder); err != nil {
		logger.Fatal().Err(err).Msg("seed stock snapshots failed")
	}
	logger.Info().Msg("stock snapshots seeded")

	if err := seedForecasts(ctx, rng, forecasts, facilityByCode, facilityOrder, medicineByName, medicineOrder); err != nil {
		logger.Fatal().Err(err).Msg("seed forecasts failed")
	}
	logger.Info().Msg("forecasts seeded")

	if err := seedAlerts(ctx, alerts, facilityByCode, medicineByName, userByName); err != nil {
		logger.Fatal().Err(err).Msg("seed alerts failed")
	}
	logger.Info().Msg("alerts seeded")

	if err := seedIntegrations(ctx, integrations); err != nil {
		logger.Fatal().Err(err).Msg("seed integrations failed")
	}
	logger.Info().Msg("integration configs seeded")

	logger.Info().Msg("demo data ready; log in with any seeded username and the default password")
}

func seedFacilities(ctx context.Context, repo *repository.FacilityRepository) (map[string]models.Facility, error) {
	payloads := []models.Facility{
		{
			Code:         "LAG-GEN",
			Name:         "Lagos Central Hospital",
			FacilityType: models.FacilityTypeHospital,
			Ownership:    models.OwnershipPublic,
			Address:      "12 Marina Road",
			City:         "Lagos",
			State:        "Lagos",
			LGA:          "Lagos Island",
			ContactEmail: "info@laggen.gov.ng",
			ContactPhone: "+234700000001",
			IsActive:     true,
		},
		{
			Code:         "ABJ-CLN",
			Name:         "Abuja Community Clinic",
			FacilityType: models.FacilityTypeClinic,
			Ownership:    models.OwnershipPublic,
			Address:      "Plot 4, Central Business District",
			City:         "Abuja",
			State:        "FCT",
			LGA:          "AMAC",
			ContactEmail: "hello@abjclinic.ng",
			ContactPhone: "+234700000002",
			IsActive:     true,
		},
		{
			Code:         "KAN-WHS",
			Name:         "Kano Regional Warehouse",
			FacilityType: models.FacilityTypeWarehouse,
			Ownership:    models.OwnershipPublic,
			Address:      "Old Airport Road",
			City:         "Kano",
			State:        "Kano",
			LGA:          "Tarauni",
			ContactEmail: "warehouse@kano.ng",
			ContactPhone: "+234700000003",
			IsActive:     true,
		},
		{
			Code:         "ENU-PHM",
			Name:         "Enugu Sunrise Pharmacy",
			FacilityType: models.FacilityTypePharmacy,
			Ownership:    models.OwnershipPrivate,
			Address:      "2 Zik Avenue",
			City:         "Enugu",
			State:        "Enugu",
			LGA:          "Enugu South",
			ContactEmail: "support@sunrisepharm.ng",
			ContactPhone: "+234700000004",
			IsActive:     true,
		},
	}

	byCode := make(map[string]models.Facility, len(payloads))
	for _, f := range payloads {
		f.ID = ids.New()
		stored, err := repo.UpsertByCode(ctx, f)
		if err != nil {
			return nil, err
		}
		byCode[stored.Code] = stored
	}
	return byCode, nil
}

func seedMedicines(ctx context.Context, repo *repository.MedicineRepository) (map[string]models.Medicine, []string, error) {
	payloads := []models.Medicine{
		{
			Name:        "Artemisinin-based Combination Therapy",
			GenericName: "Artemether/Lumefantrine",
			Category:    "Antimalarial",
			PackSize:    "24 tablet pack",
			Unit:        "pack",
			IsActive:    true,
		},
		{
			Name:        "Oxytocin Injection",
			GenericName: "Oxytocin",
			Category:    "Maternal Health",
			PackSize:    "10 IU vial",
			Unit:        "vial",
			IsActive:    true,
		},
		{
			Name:        "Zinc Sulfate",
			GenericName: "Zinc",
			Category:    "Child Health",
			PackSize:    "10 tablet strip",
			Unit:        "strip",
			IsActive:    true,
		},
		{
			Name:        "ORS Sachet",
			GenericName: "Oral Rehydration Salts",
			Category:    "Child Health",
			PackSize:    "20.5 g sachet",
			Unit:        "sachet",
			IsActive:    true,
		},
		{
			Name:        "Insulin",
			GenericName: "Human Insulin",
			Category:    "NCD",
			PackSize:    "10 ml vial",
			Unit:        "vial",
			IsActive:    true,
		},
	}

	byName := make(map[string]models.Medicine, len(payloads))
	order := make([]string, 0, len(payloads))
	for _, m := range payloads {
		m.ID = ids.New()
		stored, err := repo.UpsertByName(ctx, m)
		if err != nil {
			return nil, nil, err
		}
		byName[stored.Name] = stored
		order = append(order, stored.Name)
	}
	return byName, order, nil
}

func seedUsers(ctx context.Context, repo *repository.UserRepository, facilities map[string]models.Facility) (map[string]models.User, error) {
	type userSeed struct {
		username     string
		firstName    string
		lastName     string
		role         models.Role
		facilityCode string
	}

	payloads := []userSeed{
		{username: "superadmin", firstName: "Sade", lastName: "Bakare", role: models.RoleSuperAdmin},
		{username: "policy", firstName: "David", lastName: "Okoro", role: models.RolePolicyMaker, facilityCode: "ABJ-CLN"},
		{username: "lagos-admin", firstName: "Ada", lastName: "Olawale", role: models.RoleFacilityAdmin, facilityCode: "LAG-GEN"},
		{username: "enugu-pharm", firstName: "Chinonso", lastName: "Eke", role: models.RolePharmacist, facilityCode: "ENU-PHM"},
	}

	hash, err := security.HashPassword(defaultPassword)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.User, len(payloads))
	for _, p := range payloads {
		var facilityID *string
		if p.facilityCode != "" {
			facility := facilities[p.facilityCode]
			facilityID = &facility.ID
		}

		user, err := repo.FindByUsername(ctx, p.username)
		switch {
		case err == nil:
			user.FirstName = p.firstName
			user.LastName = p.lastName
			user.Role = p.role
			user.FacilityID = facilityID
			if user.Email == "" {
				user.Email = p.username + "@demo.healteex.ng"
			}
			if err := repo.Update(ctx, user); err != nil {
				return nil, err
			}
			if err := repo.SetPassword(ctx, user.ID, hash, models.PasswordStateSet); err != nil {
				return nil, err
			}
		case errors.Is(err, repository.ErrUserNotFound):
			user = models.User{
				ID:            ids.New(),
				Username:      p.username,
				Email:         p.username + "@demo.healteex.ng",
				Role:          p.role,
				FirstName:     p.firstName,
				LastName:      p.lastName,
				FacilityID:    facilityID,
				PasswordHash:  hash,
				PasswordState: models.PasswordStateSet,
			}
			if err := repo.Create(ctx, user); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}

		stored, err := repo.FindByUsername(ctx, p.username)
		if err != nil {
			return nil, err
		}
		byName[p.username] = stored
	}
	return byName, nil
}

func seedTransactions(
	ctx context.Context,
	repo *repository.TransactionRepository,
	facilities map[string]models.Facility,
	medicines map[string]models.Medicine,
	users map[string]models.User,
) error {
	now := time.Now().UTC()
	lagosAdmin := users["lagos-admin"].ID
	policy := users["policy"].ID
	enuguPharm := users["enugu-pharm"].ID

	payloads := []models.InventoryTransaction{
		{
			FacilityID:        facilities["LAG-GEN"].ID,
			MedicineID:        medicines["Artemisinin-based Combination Therapy"].ID,
			TransactionType:   models.TransactionTypeReceipt,
			Quantity:          450,
			BatchNumber:       "ACT-2024-04",
			SourceDestination: "Central Medical Store",
			OccurredAt:        now.AddDate(0, 0, -7),
			CreatedBy:         &lagosAdmin,
		},
		{
			FacilityID:        facilities["LAG-GEN"].ID,
			MedicineID:        medicines["Oxytocin Injection"].ID,
			TransactionType:   models.TransactionTypeIssue,
			Quantity:          120,
			SourceDestination: "Labour Ward",
			OccurredAt:        now.AddDate(0, 0, -3),
			CreatedBy:         &lagosAdmin,
		},
		{
			FacilityID:        facilities["ABJ-CLN"].ID,
			MedicineID:        medicines["Zinc Sulfate"].ID,
			TransactionType:   models.TransactionTypeReceipt,
			Quantity:          300,
			SourceDestination: "UNICEF Grant",
			OccurredAt:        now.AddDate(0, 0, -12),
			CreatedBy:         &policy,
		},
		{
			FacilityID:      facilities["ENU-PHM"].ID,
			MedicineID:      medicines["Insulin"].ID,
			TransactionType: models.TransactionTypeAdjustment,
			Quantity:        15,
			Notes:           "Adjustment after cold-chain incident",
			OccurredAt:      now.AddDate(0, 0, -2),
			CreatedBy:       &enuguPharm,
		},
	}

	for _, t := range payloads {
		t.ID = ids.New()
		if err := repo.Upsert(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func seedSnapshots(
	ctx context.Context,
	repo *repository.SnapshotRepository,
	facilities map[string]models.Facility,
	facilityOrder []string,
	medicines map[string]models.Medicine,
	medicineOrder []string,
) error {
	now := time.Now().UTC()
	for fIndex, code := range facilityOrder {
		for mIndex, name := range medicineOrder {
			snapshot := models.StockSnapshot{
				ID:          ids.New(),
				FacilityID:  facilities[code].ID,
				MedicineID:  medicines[name].ID,
				StockOnHand: float64(120 + ((fIndex+mIndex)*37)%250),
				DaysOfStock: 5 + ((fIndex+mIndex)*3)%35,
				DataSource:  "manual",
				RecordedAt:  now.AddDate(0, 0, -(1 + fIndex + mIndex)),
			}
			if err := repo.Upsert(ctx, snapshot); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedForecasts(
	ctx context.Context,
	rng *rand.Rand,
	repo *repository.ForecastRepository,
	facilities map[string]models.Facility,
	facilityOrder []string,
	medicines map[string]models.Medicine,
	medicineOrder []string,
) error {
	baseDate := time.Now().UTC().Truncate(24 * time.Hour)
	for _, code := range facilityOrder {
		for _, name := range medicineOrder[:3] {
			forecast := models.Forecast{
				ID:              ids.New(),
				FacilityID:      facilities[code].ID,
				MedicineID:      medicines[name].ID,
				ForecastDate:    baseDate,
				PeriodStart:     baseDate,
				PeriodEnd:       baseDate.AddDate(0, 0, 30),
				PredictedDemand: float64(200 + rng.Intn(601)),
				ModelVersion:    "v1.0",
			}
			lower := float64(150 + rng.Intn(151))
			upper := float64(900 + rng.Intn(301))
			forecast.ConfidenceIntervalLower = &lower
			forecast.ConfidenceIntervalUpper = &upper

			if err := repo.Upsert(ctx, forecast); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedAlerts(
	ctx context.Context,
	repo *repository.AlertRepository,
	facilities map[string]models.Facility,
	medicines map[string]models.Medicine,
	users map[string]models.User,
) error {
	now := time.Now().UTC()
	enuguPharm := users["enugu-pharm"].ID
	resolvedAt := now.AddDate(0, 0, -2)

	payloads := []models.Alert{
		{
			FacilityID:  facilities["LAG-GEN"].ID,
			MedicineID:  medicines["Oxytocin Injection"].ID,
			AlertType:   models.AlertTypeLowStock,
			Status:      models.AlertStatusOpen,
			Message:     "Only 3 days of stock remaining",
			TriggeredAt: now.AddDate(0, 0, -1),
		},
		{
			FacilityID:  facilities["ENU-PHM"].ID,
			MedicineID:  medicines["Insulin"].ID,
			AlertType:   models.AlertTypeExpiry,
			Status:      models.AlertStatusAcknowledged,
			Message:     "Batch INS-203 expires in 15 days",
			TriggeredAt: now.AddDate(0, 0, -5),
			ResolvedAt:  &resolvedAt,
			ResolvedBy:  &enuguPharm,
		},
	}

	for _, a := range payloads {
		a.ID = ids.New()
		if err := repo.Upsert(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func seedIntegrations(ctx context.Context, repo *repository.IntegrationRepository) error {
	payloads := []models.IntegrationConfig{
		{
			SystemName:  "DHIS2 Sandbox",
			BaseURL:     "https://dhis2-demo.server/api",
			AuthType:    models.IntegrationAuthBasic,
			Credentials: map[string]any{"username": "demo", "password": "District1"},
			IsActive:    true,
		},
		{
			SystemName:  "OpenLMIS",
			BaseURL:     "https://openlmis.example/graphql",
			AuthType:    models.IntegrationAuthToken,
			Credentials: map[string]any{"token": "sample-token"},
			IsActive:    true,
		},
	}

	for _, i := range payloads {
		i.ID = ids.New()
		if err := repo.UpsertBySystemName(ctx, i); err != nil {
			return err
		}
	}
	return nil
}
