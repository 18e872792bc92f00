package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sciome/bmdexpress-web/internal/apperr"
	"github.com/sciome/bmdexpress-web/internal/logging"
	"github.com/sciome/bmdexpress-web/internal/metrics"
	"github.com/sciome/bmdexpress-web/internal/projects/domain"
	"github.com/sciome/bmdexpress-web/internal/projects/locator"
	"github.com/sciome/bmdexpress-web/internal/projects/registry"
	"github.com/sciome/bmdexpress-web/internal/projects/tabular"
)

// BundleExt is the file extension of project bundles.
const BundleExt = ".bm2"

// ErrInvalidFilename is returned by LoadFromFile for names that would
// escape the projects directory.
var ErrInvalidFilename = errors.New("invalid filename")

// Decoder turns raw bundle bytes into a project.
type Decoder interface {
	Decode(data []byte) (*domain.Project, error)
}

// Summary is the upload/lookup view of a registered project.
type Summary struct {
	ProjectID           string    `json:"projectId"`
	Name                string    `json:"name"`
	OriginalFilename    string    `json:"originalFilename,omitempty"`
	UploadedAt          time.Time `json:"uploadedAt"`
	ExperimentNames     []string  `json:"experimentNames"`
	BMDResultNames      []string  `json:"bmdResultNames"`
	CategoryResultNames []string  `json:"categoryResultNames"`
	ExperimentCount     int       `json:"experimentCount"`
}

type Config struct {
	ProjectsDir    string
	MaxUploadBytes int64
}

// ProjectService handles project uploads and queries.
type ProjectService struct {
	decoder  Decoder
	registry *registry.Registry
	cfg      Config
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// NewProjectService creates a new project service
func NewProjectService(dec Decoder, reg *registry.Registry, cfg Config, log *zap.Logger, m *metrics.Metrics) *ProjectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectService{
		decoder:  dec,
		registry: reg,
		cfg:      cfg,
		log:      log,
		metrics:  m,
	}
}

// Upload decodes a bundle from r and registers it. Nothing is registered
// when decoding fails.
func (s *ProjectService) Upload(ctx context.Context, r io.Reader, filename string) (*registry.Session, error) {
	return s.load(ctx, r, filename, "upload")
}

// LoadFromFile registers a bundle stored in the projects directory.
func (s *ProjectService) LoadFromFile(ctx context.Context, filename string) (*registry.Session, error) {
	if filename == "" {
		return nil, apperr.Validation("no filename provided")
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return nil, ErrInvalidFilename
	}

	f, err := os.Open(filepath.Join(s.cfg.ProjectsDir, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.NotFound("file not found: %s", filename)
		}
		if errors.Is(err, os.ErrPermission) {
			return nil, ErrInvalidFilename
		}
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	return s.load(ctx, f, filename, "file")
}

func (s *ProjectService) load(ctx context.Context, r io.Reader, filename, source string) (*registry.Session, error) {
	log := logging.FromContext(ctx, s.log).With(zap.String("filename", filename), zap.String("source", source))

	data, err := s.readAll(r)
	if err != nil {
		s.metrics.RecordUpload(source, "rejected")
		log.Warn("project bundle rejected", zap.Error(err))
		return nil, err
	}
	p, err := s.decoder.Decode(data)
	if err != nil {
		s.metrics.RecordUpload(source, "decode_error")
		log.Warn("project bundle could not be decoded", zap.Error(err))
		return nil, err
	}
	sess, err := s.registry.Register(p, filename)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordUpload(source, "ok")
	s.metrics.SetProjects(s.registry.Len())
	log.Info("project registered", zap.String("project_id", sess.ID), zap.String("name", p.Name), zap.Int("bytes", len(data)))

	return sess, nil
}

func (s *ProjectService) readAll(r io.Reader) ([]byte, error) {
	if s.cfg.MaxUploadBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, apperr.Validation("bundle exceeds %d bytes", s.cfg.MaxUploadBytes)
	}
	return data, nil
}

// AvailableFiles lists the bundle files in the projects directory, sorted.
// A missing directory yields an empty list.
func (s *ProjectService) AvailableFiles() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.ProjectsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Warn("projects directory does not exist", zap.String("dir", s.cfg.ProjectsDir))
			return []string{}, nil
		}
		return nil, fmt.Errorf("list projects directory: %w", err)
	}
	files := []string{}
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), BundleExt) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *ProjectService) Get(id string) (*registry.Session, error) {
	return s.registry.Get(id)
}

func (s *ProjectService) List() []string {
	return s.registry.List()
}

// Delete removes a project and reports whether it existed.
func (s *ProjectService) Delete(ctx context.Context, id string) bool {
	removed := s.registry.Remove(id)
	if removed {
		s.metrics.SetProjects(s.registry.Len())
		logging.FromContext(ctx, s.log).Info("project deleted", zap.String("project_id", id))
	}
	return removed
}

func (s *ProjectService) Summary(id string) (*Summary, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return Summarize(sess), nil
}

func (s *ProjectService) ResultNames(id string, kind domain.ResultKind) ([]string, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return locator.ListNames(sess, kind), nil
}

func (s *ProjectService) FindResult(id string, kind domain.ResultKind, name string) (domain.Result, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return locator.FindNamed(sess, kind, name)
}

// Table returns the tabular projection of a named result.
func (s *ProjectService) Table(id string, kind domain.ResultKind, name string) (tabular.Projection, error) {
	r, err := s.FindResult(id, kind, name)
	if err != nil {
		return tabular.Projection{}, err
	}
	return tabular.Project(r), nil
}

// Summarize builds the summary view of a session.
func Summarize(sess *registry.Session) *Summary {
	return &Summary{
		ProjectID:           sess.ID,
		Name:                sess.Project.Name,
		OriginalFilename:    sess.OriginalFilename,
		UploadedAt:          sess.UploadedAt,
		ExperimentNames:     locator.ListNames(sess, domain.KindExperiment),
		BMDResultNames:      locator.ListNames(sess, domain.KindBMD),
		CategoryResultNames: locator.ListNames(sess, domain.KindCategory),
		ExperimentCount:     len(sess.Project.Results(domain.KindExperiment)),
	}
}
