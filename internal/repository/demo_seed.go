package repository

import (
	"context"

	"elektropregled/internal/domain"
)

// Demo data loaded when the server runs without a database.
const (
	DemoUsername   = "demo"
	DemoPassword   = "demo123"
	DemoFacilityID = 1
)

// SeedDemo loads one facility with a bay, a breaker ("PK", BOOLEAN and
// NUMERIC 10..80 checks), a fieldless transformer and the demo worker.
// passwordHash is the bcrypt hash of DemoPassword.
func SeedDemo(ctx context.Context, s ReferenceSeeder, passwordHash string) error {
	return s.Seed(ctx, func(w ReferenceWriter) error {
		if err := w.UpsertFacility(ctx, domain.Facility{
			ID: DemoFacilityID, TypeCode: "TS", Name: "TS 110/20 kV Demo", Location: "Zagreb",
		}); err != nil {
			return err
		}
		if err := w.UpsertField(ctx, domain.Field{
			ID: 1, FacilityID: DemoFacilityID, VoltageLevel: 110, TypeCode: "DV", Name: "DV 110 kV Sjever",
		}); err != nil {
			return err
		}

		breaker, err := w.UpsertEquipmentType(ctx, "PK", "Prekidač")
		if err != nil {
			return err
		}
		transformer, err := w.UpsertEquipmentType(ctx, "TR", "Energetski transformator")
		if err != nil {
			return err
		}

		params := []domain.Parameter{
			{Name: "Vizualna provjera", Kind: domain.KindBoolean, Required: true, Order: 1, TypeID: breaker},
			{Name: "Tlak SF6", Kind: domain.KindNumeric, Min: ptr(10.0), Max: ptr(80.0), Unit: "bar", Required: true, Order: 2, TypeID: breaker},
			{Name: "Temperatura ulja", Kind: domain.KindNumeric, Min: ptr(0.0), Max: ptr(90.0), Unit: "°C", Required: true, Order: 1, TypeID: transformer},
			{Name: "Napomena", Kind: domain.KindText, Order: 2, TypeID: transformer},
		}
		for _, p := range params {
			if err := w.UpsertParameter(ctx, p); err != nil {
				return err
			}
		}

		field := int64(1)
		for _, e := range []domain.Equipment{
			{ID: 1, Label: "PK-110-01", SerialNumber: "SN-PK-0001", FacilityID: DemoFacilityID, FieldID: &field, TypeID: breaker},
			{ID: 2, Label: "TR-1", SerialNumber: "SN-TR-0001", FacilityID: DemoFacilityID, TypeID: transformer},
		} {
			if err := w.UpsertEquipment(ctx, e); err != nil {
				return err
			}
		}

		return w.UpsertUser(ctx, domain.User{
			FirstName: "Demo", LastName: "Radnik", Username: DemoUsername,
			PasswordHash: passwordHash, Role: domain.RoleWorker,
		})
	})
}

func ptr[T any](v T) *T { return &v }
