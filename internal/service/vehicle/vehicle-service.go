// Package vehicle looks up registered vehicles. With no registry configured it
// answers from a deterministic mock that fails at a fixed probability.
package vehicle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"CoverBot/entity"
	"CoverBot/internal/config"
	"CoverBot/internal/lib/sl"
)

var registrationPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{1,2}[A-Z]{0,3}[0-9]{4}$`)

type Service struct {
	Login    string
	Password string
	BaseURL  string
	failRate float64
	random   func() float64
	client   *http.Client
	Log      *slog.Logger
}

func NewVehicleService(conf *config.Config, logger *slog.Logger) *Service {
	s := New(conf.Journey.LookupFailRate, rand.Float64, logger)
	s.Login = conf.VehicleService.Login
	s.Password = conf.VehicleService.Password
	s.BaseURL = conf.VehicleService.BaseURL
	return s
}

// New creates a mock-backed service. random must return values in [0, 1).
func New(failRate float64, random func() float64, logger *slog.Logger) *Service {
	return &Service{
		failRate: failRate,
		random:   random,
		client:   &http.Client{},
		Log:      logger.With(sl.Module("vehicle service")),
	}
}

// NormalizeRegistration upper-cases a registration number and drops separators.
func NormalizeRegistration(reg string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, reg)
}

// ValidRegistration checks the Indian registration number format.
func ValidRegistration(reg string) bool {
	return registrationPattern.MatchString(NormalizeRegistration(reg))
}

// Lookup finds a vehicle by registration number. found is false when the
// registry has no record or the lookup failed; the journey then falls back
// to manual entry.
func (s *Service) Lookup(ctx context.Context, vehicleType, registration string) (entity.Vehicle, bool, error) {
	reg := NormalizeRegistration(registration)
	if s.BaseURL != "" {
		return s.remoteLookup(ctx, reg)
	}
	if !registrationPattern.MatchString(reg) {
		return entity.Vehicle{}, false, nil
	}
	if s.random() < s.failRate {
		s.Log.Debug("simulated lookup failure", slog.String("registration", reg))
		return entity.Vehicle{}, false, nil
	}
	return mockVehicle(vehicleType, reg), true, nil
}

func mockVehicle(vehicleType, reg string) entity.Vehicle {
	h := fnv.New32a()
	_, _ = h.Write([]byte(reg))
	sum := h.Sum32()

	models := make([]entity.Vehicle, 0, len(catalogue))
	for _, v := range catalogue {
		if v.Type == vehicleType {
			models = append(models, v)
		}
	}
	if len(models) == 0 {
		models = catalogue
	}
	v := models[int(sum%uint32(len(models)))]
	v.Registration = reg
	v.Year = 2014 + int(sum%11)
	return v
}

func (s *Service) getBase64Auth() string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", s.Login, s.Password)))
}

func (s *Service) remoteLookup(ctx context.Context, reg string) (entity.Vehicle, bool, error) {
	url := fmt.Sprintf("%s/vehicles/%s", strings.TrimRight(s.BaseURL, "/"), reg)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return entity.Vehicle{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Basic %s", s.getBase64Auth()))
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return entity.Vehicle{}, false, fmt.Errorf("failed to send request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return entity.Vehicle{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return entity.Vehicle{}, false, fmt.Errorf("request failed with status: %d", resp.StatusCode)
	}

	var v entity.Vehicle
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return entity.Vehicle{}, false, fmt.Errorf("failed to parse response: %w", err)
	}
	v.Registration = reg

	s.Log.With(
		slog.String("registration", reg),
		slog.String("model", v.DisplayName()),
	).Debug("vehicle found")

	return v, true, nil
}
