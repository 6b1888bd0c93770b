package identity

import (
	"errors"
	"fmt"
	"os"

	"github.com/benmeehan/status-monitor/pkg/file"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/host"
)

// Identity holds the system's unique identifier and display labels.
type Identity struct {
	ID   string `json:"system_id,omitempty"`
	Name string `json:"system_name,omitempty"`
	Type string `json:"system_type,omitempty"`
}

// SystemInfoInterface defines methods for managing system identity.
type SystemInfoInterface interface {
	LoadSystemInfo() error
	GetSystemID() string
	GetSystemName() string
	GetSystemType() string
}

// HostLookup reports the host name and platform label of the machine.
type HostLookup func() (name, platform string, err error)

// GopsutilHost reads host details through gopsutil.
func GopsutilHost() (string, string, error) {
	info, err := host.Info()
	if err != nil {
		return "", "", err
	}
	platform := info.OS
	if info.Platform != "" {
		platform = fmt.Sprintf("%s/%s", info.OS, info.Platform)
	}
	return info.Hostname, platform, nil
}

// SystemInfo manages the system identity and its associated file operations.
type SystemInfo struct {
	SystemInfoFile string
	Identity       Identity

	nameOverride string
	typeOverride string
	fileOps      file.FileOperations
	lookup       HostLookup
}

// NewSystemInfo initializes a new SystemInfo. Non-empty name or systemType
// override what is stored in the file and what the host reports.
func NewSystemInfo(filePath, name, systemType string, fileOps file.FileOperations, lookup HostLookup) *SystemInfo {
	if lookup == nil {
		lookup = GopsutilHost
	}
	return &SystemInfo{
		SystemInfoFile: filePath,
		nameOverride:   name,
		typeOverride:   systemType,
		fileOps:        fileOps,
		lookup:         lookup,
	}
}

// LoadSystemInfo reads the identity file, generating and persisting a new
// system id the first time the agent runs on this machine.
func (s *SystemInfo) LoadSystemInfo() error {
	err := s.fileOps.ReadJsonFile(s.SystemInfoFile, &s.Identity)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read identity file: %w", err)
	}

	if s.Identity.ID == "" {
		s.Identity.ID = uuid.New().String()
		if err := s.fileOps.WriteJsonFile(s.SystemInfoFile, s.Identity); err != nil {
			return fmt.Errorf("failed to save system id: %w", err)
		}
	}

	if s.nameOverride != "" {
		s.Identity.Name = s.nameOverride
	}
	if s.typeOverride != "" {
		s.Identity.Type = s.typeOverride
	}

	if s.Identity.Name == "" || s.Identity.Type == "" {
		hostname, platform, err := s.lookup()
		if err != nil {
			return fmt.Errorf("failed to read host info: %w", err)
		}
		if s.Identity.Name == "" {
			s.Identity.Name = hostname
		}
		if s.Identity.Type == "" {
			s.Identity.Type = platform
		}
	}

	if s.Identity.Name == "" {
		return errors.New("system name could not be determined")
	}
	return nil
}

// GetSystemID returns the current system ID.
func (s *SystemInfo) GetSystemID() string {
	return s.Identity.ID
}

// GetSystemName returns the display name sent with each heartbeat.
func (s *SystemInfo) GetSystemName() string {
	return s.Identity.Name
}

// GetSystemType returns the category label sent with each heartbeat.
func (s *SystemInfo) GetSystemType() string {
	return s.Identity.Type
}
