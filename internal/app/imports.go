package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"hotel_reservations/internal/domain"
)

// ImportService creates reservations in bulk through the gateway.
type ImportService struct {
	gw  domain.ReservationGateway
	val *FormValidator
}

func NewImportService(gw domain.ReservationGateway, val *FormValidator) *ImportService {
	return &ImportService{gw: gw, val: val}
}

func (s *ImportService) Import(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	if err := s.val.Validate(r); err != nil {
		return domain.Reservation{}, err
	}
	created, err := s.gw.Create(ctx, r)
	if err != nil {
		var gerr *domain.GatewayError
		if errors.As(err, &gerr) {
			return domain.Reservation{}, fmt.Errorf("create %q: %s: %w", r.ClientName, gerr.Detail(), err)
		}
		return domain.Reservation{}, fmt.Errorf("create %q: %w", r.ClientName, err)
	}
	return created, nil
}

type importFile struct {
	Reservations []domain.Reservation `yaml:"reservations"`
}

// DecodeImportFile reads a YAML document with a top-level "reservations"
// list. Ids are dropped (the server assigns them) and a missing room type
// falls back to SIMPLE like the blank form.
func DecodeImportFile(r io.Reader) ([]domain.Reservation, error) {
	var f importFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode import file: %w", err)
	}
	for i := range f.Reservations {
		f.Reservations[i].ID = ""
		if f.Reservations[i].RoomType == "" {
			f.Reservations[i].RoomType = domain.RoomSimple
		}
	}
	return f.Reservations, nil
}
