package factory

import (
	"fmt"
	"strings"

	"github.com/anime-shed/mindtrack-report/internal/legibility"
	"github.com/anime-shed/mindtrack-report/internal/storage"
)

// ArchiveType represents different report archive backends
type ArchiveType string

const (
	// NoArchive disables archiving
	NoArchive ArchiveType = "none"
	// LocalArchive stores reports on the local file system
	LocalArchive ArchiveType = "local"
	// AzureArchive stores reports in Azure blob storage
	AzureArchive ArchiveType = "azure"
)

// ParseArchiveType normalises a configured backend name. Empty means none.
func ParseArchiveType(s string) (ArchiveType, error) {
	switch t := ArchiveType(strings.ToLower(strings.TrimSpace(s))); t {
	case "", NoArchive:
		return NoArchive, nil
	case LocalArchive, AzureArchive:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported archive type: %s", s)
	}
}

// ArchiveOptions carries the settings of every backend; each backend reads
// only its own fields
type ArchiveOptions struct {
	Dir                   string
	AzureConnectionString string
	AzureContainer        string
}

// ArchiveFactory creates report archives
type ArchiveFactory interface {
	// CreateArchive returns nil without error for NoArchive.
	CreateArchive(archiveType ArchiveType, opts ArchiveOptions) (storage.ReportArchive, error)
}

type archiveFactory struct{}

// NewArchiveFactory creates a new archive factory
func NewArchiveFactory() ArchiveFactory {
	return &archiveFactory{}
}

// CreateArchive creates an archive based on the specified type
func (f *archiveFactory) CreateArchive(archiveType ArchiveType, opts ArchiveOptions) (storage.ReportArchive, error) {
	switch archiveType {
	case NoArchive:
		return nil, nil
	case LocalArchive:
		return storage.NewLocalArchive(opts.Dir)
	case AzureArchive:
		if opts.AzureConnectionString == "" {
			return nil, fmt.Errorf("azure archive requires a connection string")
		}
		return storage.NewAzureArchive(opts.AzureConnectionString, opts.AzureContainer)
	default:
		return nil, fmt.Errorf("unsupported archive type: %s", archiveType)
	}
}

// EngineFactory creates OCR engines for the legibility check. The concrete
// engine lives outside this package so the service builds without
// Tesseract; cmd/api supplies it.
type EngineFactory func(language string) (legibility.Engine, error)

// ComponentFactory combines all factories
type ComponentFactory struct {
	ArchiveFactory ArchiveFactory
	EngineFactory  EngineFactory
}

// NewComponentFactory creates a new component factory. A nil engine factory
// leaves the legibility check unavailable.
func NewComponentFactory(engines EngineFactory) *ComponentFactory {
	return &ComponentFactory{
		ArchiveFactory: NewArchiveFactory(),
		EngineFactory:  engines,
	}
}
