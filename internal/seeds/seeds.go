// Package seeds loads the bundled sample data set through the regular services,
// so seeded rows pass the same validation as API writes.
package seeds

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"equipment-tracker/internal/equipment_mgmt/equipment"
	"equipment-tracker/internal/equipment_mgmt/holders"
	"equipment-tracker/internal/equipment_mgmt/locations"
	"equipment-tracker/internal/equipment_mgmt/usage"
	"equipment-tracker/internal/platform/apierr"
)

//go:embed sample.yaml
var sampleYAML []byte

type Student struct {
	ID         uint64 `yaml:"id"`
	Name       string `yaml:"name"`
	Department string `yaml:"department"`
	Year       int    `yaml:"year"`
	Contact    string `yaml:"contact"`
	Email      string `yaml:"email"`
}

type Faculty struct {
	ID          uint64 `yaml:"id"`
	Name        string `yaml:"name"`
	Department  string `yaml:"department"`
	Designation string `yaml:"designation"`
	Contact     string `yaml:"contact"`
	Email       string `yaml:"email"`
}

type Equipment struct {
	ID           uint64 `yaml:"id"`
	Name         string `yaml:"name"`
	Category     string `yaml:"category"`
	PurchaseDate string `yaml:"purchase_date"`
	Condition    string `yaml:"condition"`
}

type Location struct {
	ID       uint64 `yaml:"id"`
	Name     string `yaml:"name"`
	Building string `yaml:"building"`
	Room     string `yaml:"room"`
}

type Usage struct {
	EquipmentID     uint64 `yaml:"equipment_id"`
	HolderType      string `yaml:"holder_type"`
	HolderID        uint64 `yaml:"holder_id"`
	LocationID      uint64 `yaml:"location_id"`
	OutDaysAgo      int    `yaml:"out_days_ago"`
	ReturnedDaysAgo *int   `yaml:"returned_days_ago"`
}

type Data struct {
	Students  []Student   `yaml:"students"`
	Faculty   []Faculty   `yaml:"faculty"`
	Equipment []Equipment `yaml:"equipment"`
	Locations []Location  `yaml:"locations"`
	Usage     []Usage     `yaml:"usage"`
}

// Sample parses the embedded data set.
func Sample() (*Data, error) {
	return Parse(sampleYAML)
}

func Parse(buf []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(buf, &d); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &d, nil
}

// ===== 書き込み先 =====

type HolderWriter interface {
	CreateStudent(ctx context.Context, req holders.CreateStudentRequest) (*holders.Student, error)
	CreateFaculty(ctx context.Context, req holders.CreateFacultyRequest) (*holders.Faculty, error)
}

type EquipmentWriter interface {
	Create(ctx context.Context, req equipment.CreateEquipmentRequest) (*equipment.EquipmentResponse, error)
}

type LocationWriter interface {
	Create(ctx context.Context, req locations.CreateLocationRequest) (*locations.Location, error)
}

type Ledger interface {
	CheckOut(ctx context.Context, req usage.CheckOutRequest) (*usage.UsageResponse, error)
	CheckIn(ctx context.Context, req usage.CheckInRequest) (*usage.UsageResponse, error)
	Stats(ctx context.Context) (*usage.Stats, error)
}

type Targets struct {
	Holders   HolderWriter
	Equipment EquipmentWriter
	Locations LocationWriter
	Ledger    Ledger
}

type Report struct {
	Created int
	Skipped int
}

// Apply writes d. Rows whose id already exists are skipped; ledger rows are only
// written into an empty ledger so a second run does not duplicate history.
func Apply(ctx context.Context, t Targets, d *Data, today time.Time, log *zap.Logger) (Report, error) {
	var rep Report
	track := func(what string, id uint64, err error) error {
		switch {
		case err == nil:
			rep.Created++
			return nil
		case apierr.Is(err, apierr.CodeConflict):
			rep.Skipped++
			log.Debug("seed row exists", zap.String("kind", what), zap.Uint64("id", id))
			return nil
		default:
			return fmt.Errorf("seed %s %d: %w", what, id, err)
		}
	}

	for _, s := range d.Students {
		year := s.Year
		_, err := t.Holders.CreateStudent(ctx, holders.CreateStudentRequest{
			StudentID:  s.ID,
			Name:       s.Name,
			Department: opt(s.Department),
			Year:       &year,
			Contact:    opt(s.Contact),
			Email:      opt(s.Email),
		})
		if err := track("student", s.ID, err); err != nil {
			return rep, err
		}
	}
	for _, f := range d.Faculty {
		_, err := t.Holders.CreateFaculty(ctx, holders.CreateFacultyRequest{
			FacultyID:   f.ID,
			Name:        f.Name,
			Department:  opt(f.Department),
			Designation: opt(f.Designation),
			Contact:     opt(f.Contact),
			Email:       opt(f.Email),
		})
		if err := track("faculty", f.ID, err); err != nil {
			return rep, err
		}
	}
	for _, e := range d.Equipment {
		_, err := t.Equipment.Create(ctx, equipment.CreateEquipmentRequest{
			EquipmentID:     e.ID,
			Name:            e.Name,
			Category:        opt(e.Category),
			PurchaseDate:    opt(e.PurchaseDate),
			ConditionStatus: opt(e.Condition),
		})
		if err := track("equipment", e.ID, err); err != nil {
			return rep, err
		}
	}
	for _, l := range d.Locations {
		_, err := t.Locations.Create(ctx, locations.CreateLocationRequest{
			LocationID:   l.ID,
			LocationName: opt(l.Name),
			Building:     opt(l.Building),
			RoomNo:       opt(l.Room),
		})
		if err := track("location", l.ID, err); err != nil {
			return rep, err
		}
	}

	st, err := t.Ledger.Stats(ctx)
	if err != nil {
		return rep, err
	}
	if st.TotalUsage > 0 {
		log.Info("ledger already has records, skipping usage seed", zap.Int64("total_usage", st.TotalUsage))
		rep.Skipped += len(d.Usage)
		return rep, nil
	}
	for _, u := range d.Usage {
		out := dayString(today, u.OutDaysAgo)
		rec, err := t.Ledger.CheckOut(ctx, usage.CheckOutRequest{
			EquipmentID:  u.EquipmentID,
			HolderID:     u.HolderID,
			HolderType:   u.HolderType,
			LocationID:   u.LocationID,
			CheckedOutOn: &out,
		})
		if err != nil {
			return rep, fmt.Errorf("seed checkout of equipment %d: %w", u.EquipmentID, err)
		}
		rep.Created++
		if u.ReturnedDaysAgo != nil {
			back := dayString(today, *u.ReturnedDaysAgo)
			if _, err := t.Ledger.CheckIn(ctx, usage.CheckInRequest{UsageID: rec.UsageID, ReturnedOn: &back}); err != nil {
				return rep, fmt.Errorf("seed check-in of usage %d: %w", rec.UsageID, err)
			}
		}
	}
	return rep, nil
}

func dayString(today time.Time, daysAgo int) string {
	return today.AddDate(0, 0, -daysAgo).Format(usage.DateLayout)
}

func opt(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
