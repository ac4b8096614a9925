package usecase

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/rtc-event-log/internal/domain"
)

// PersistFilter is the archiver's compaction policy: it decides which event
// records reach the long-term sink. A nil filter keeps everything.
type PersistFilter struct {
	allowed      map[domain.EventType]struct{}
	configAlways bool
}

type persistFilterFile struct {
	// Types is an allowlist of event type names to persist. Empty means
	// persist every type.
	Types []string `yaml:"types"`

	// ConfigEventsAlways keeps configuration snapshots even when their type
	// is not on the allowlist. On by default: a log without stream configs
	// is close to useless for offline analysis.
	ConfigEventsAlways *bool `yaml:"config_events_always"`
}

// LoadPersistFilter reads a YAML filter policy from path. An empty path
// yields a nil filter (persist everything).
func LoadPersistFilter(path string) (*PersistFilter, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read persist filter file %s: %w", path, err)
	}

	var file persistFilterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse persist filter file %s: %w", path, err)
	}

	f := &PersistFilter{configAlways: true}
	if file.ConfigEventsAlways != nil {
		f.configAlways = *file.ConfigEventsAlways
	}
	if len(file.Types) > 0 {
		f.allowed = make(map[domain.EventType]struct{}, len(file.Types))
		for _, name := range file.Types {
			typ := domain.ParseEventType(name)
			if typ == domain.EventTypeUnknown {
				return nil, fmt.Errorf("persist filter names unknown event type %q", name)
			}
			f.allowed[typ] = struct{}{}
		}
	}
	return f, nil
}

// Keep reports whether the record should be persisted.
func (f *PersistFilter) Keep(rec domain.Record) bool {
	if f == nil || f.allowed == nil {
		return true
	}
	if f.configAlways && rec.ConfigEvent {
		return true
	}
	_, ok := f.allowed[domain.ParseEventType(rec.Type)]
	return ok
}
