package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/examplanner-api/internal/dto"
	"github.com/noah-isme/examplanner-api/internal/models"
	appErrors "github.com/noah-isme/examplanner-api/pkg/errors"
	"github.com/noah-isme/examplanner-api/pkg/export"
	"github.com/noah-isme/examplanner-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type allotmentDetailReader interface {
	FindDetail(ctx context.Context, id string) (*models.AllotmentDetail, error)
}

type csvRenderer interface {
	Render(sections ...export.Section) ([]byte, error)
}

type pdfRenderer interface {
	Render(title string, sections ...export.Section) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

var seatChartHeaders = []string{"Classroom", "Seat", "Row", "Column", "Roll Number", "Course", "Exam"}

// AllotmentExportService renders committed allotments as seat charts and
// hands out signed download links.
type AllotmentExportService struct {
	allotments allotmentDetailReader
	classrooms allotmentClassroomReader
	storage    fileStorage
	signer     *storage.SignedURLSigner
	csv        csvRenderer
	pdf        pdfRenderer
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewAllotmentExportService constructs an AllotmentExportService. Renderers
// default to the CSV and PDF exporters when nil.
func NewAllotmentExportService(allotments allotmentDetailReader, classrooms allotmentClassroomReader, files fileStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, cfg ExportConfig, csv csvRenderer, pdf pdfRenderer) *AllotmentExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &AllotmentExportService{
		allotments: allotments,
		classrooms: classrooms,
		storage:    files,
		signer:     signer,
		csv:        csv,
		pdf:        pdf,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate renders the seat chart of an allotment and stores it.
func (s *AllotmentExportService) Generate(ctx context.Context, allotmentID string, req dto.ExportAllotmentRequest) (*dto.ExportAllotmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	detail, err := s.allotments.FindDetail(ctx, allotmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "allotment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allotment")
	}

	sections, err := s.seatChart(ctx, detail)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch req.Format {
	case "csv":
		payload, err = s.csv.Render(sections...)
	case "pdf":
		payload, err = s.pdf.Render("Seat Plan "+detail.SessionKey, append(sections, dutySection(detail))...)
	default:
		err = fmt.Errorf("unsupported format %s", req.Format)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render seat chart")
	}

	relPath, err := s.storage.Save(exportFilename(detail.SessionKey, req.Format), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store seat chart")
	}
	token, expiresAt, err := s.signer.Generate(detail.ID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("seat chart exported", zap.String("allotment_id", detail.ID), zap.String("format", req.Format), zap.String("path", relPath))
	return &dto.ExportAllotmentResponse{
		AllotmentID: detail.ID,
		Format:      req.Format,
		Token:       token,
		URL:         fmt.Sprintf("%s/allotments/export/%s", prefix, token),
		ExpiresAt:   expiresAt,
	}, nil
}

// Resolve validates a download token and returns the stored file path.
func (s *AllotmentExportService) Resolve(token string) (string, error) {
	parsed, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return "", appErrors.Clone(appErrors.ErrExportExpired, "download link expired")
		}
		return "", appErrors.Clone(appErrors.ErrNotFound, "download link invalid")
	}
	return parsed.Path, nil
}

// Open returns a handle to the stored file.
func (s *AllotmentExportService) Open(relPath string) (*os.File, error) {
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export file missing")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	return file, nil
}

// Cleanup removes files older than ttl, or the configured ResultTTL when ttl <= 0.
func (s *AllotmentExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// seatChart builds one section per classroom in seat order. Empty seats are
// kept so the chart mirrors the room layout.
func (s *AllotmentExportService) seatChart(ctx context.Context, detail *models.AllotmentDetail) ([]export.Section, error) {
	names := map[string]string{}
	if s.classrooms != nil {
		rooms, err := s.classrooms.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
		}
		for _, room := range rooms {
			names[room.ID] = room.Name
		}
	}

	sections := []export.Section{}
	index := map[string]int{}
	for _, seat := range detail.Seats {
		pos, ok := index[seat.ClassroomID]
		if !ok {
			title := seat.ClassroomID
			if name := names[seat.ClassroomID]; name != "" {
				title = name
			}
			sections = append(sections, export.Section{Title: title, Data: export.Dataset{Headers: seatChartHeaders}})
			pos = len(sections) - 1
			index[seat.ClassroomID] = pos
		}
		sections[pos].Data.Rows = append(sections[pos].Data.Rows, map[string]string{
			"Classroom":   sections[pos].Title,
			"Seat":        strconv.Itoa(seat.SeatNumber),
			"Row":         strconv.Itoa(seat.BenchRow),
			"Column":      strconv.Itoa(seat.BenchColumn),
			"Roll Number": deref(seat.RollNumber),
			"Course":      deref(seat.Course),
			"Exam":        deref(seat.ExamID),
		})
	}
	if len(sections) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "allotment has no seats to export")
	}
	return sections, nil
}

func dutySection(detail *models.AllotmentDetail) export.Section {
	section := export.Section{
		Title: "Invigilators",
		Data:  export.Dataset{Headers: []string{"Classroom", "Invigilator", "Exam"}},
	}
	for _, duty := range detail.Duties {
		section.Data.Rows = append(section.Data.Rows, map[string]string{
			"Classroom":   duty.ClassroomID,
			"Invigilator": duty.InvigilatorID,
			"Exam":        duty.ExamID,
		})
	}
	return section
}

func exportFilename(sessionKey, format string) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("seatplan_%s_%s.%s", sanitizeFilename(sessionKey), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
