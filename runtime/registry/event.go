/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package registry

import "log/slog"

// EventKind classifies an Event.
type EventKind uint8

const (
	// EventRegistered is emitted after a successful registration.
	EventRegistered EventKind = iota + 1
	// EventUnregistered is emitted after an entry was removed.
	EventUnregistered
	// EventDuplicate is emitted when a registration was rejected because the
	// contract already has an entry with the same lifetime.
	EventDuplicate
	// EventNotRegistered is emitted when an unregistration found nothing.
	EventNotRegistered
	// EventConstructionFailed is emitted when a constructor failed during lookup.
	EventConstructionFailed
	// EventCleared is emitted after Clear or Close emptied the registry.
	EventCleared
	// EventReleaseFailed is emitted when closing released instances failed.
	EventReleaseFailed
)

// String returns a short description of the kind.
func (k EventKind) String() string {
	switch k {
	case EventRegistered:
		return "service registered"
	case EventUnregistered:
		return "service unregistered"
	case EventDuplicate:
		return "service already registered"
	case EventNotRegistered:
		return "service not registered"
	case EventConstructionFailed:
		return "service construction failed"
	case EventCleared:
		return "registry cleared"
	case EventReleaseFailed:
		return "service release failed"
	default:
		return "unknown event"
	}
}

// Event describes an observable registry outcome. Formatting is left to
// the observer; see WithObserver.
type Event struct {
	Kind     EventKind
	Key      Key      // zero for EventCleared and EventReleaseFailed
	Lifetime Lifetime // zero when not tied to a single table
	Err      error    // set for failures and rejected operations
}

// level maps an event to the log level it is reported at.
func (e Event) level() slog.Level {
	switch e.Kind {
	case EventRegistered, EventUnregistered, EventCleared:
		return slog.LevelDebug
	case EventDuplicate, EventNotRegistered:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// attrs returns the log attributes of the event.
func (e Event) attrs() []any {
	attrs := make([]any, 0, 6)
	if !e.Key.IsZero() {
		attrs = append(attrs, "contract", e.Key.String())
	}
	if e.Lifetime != 0 {
		attrs = append(attrs, "lifetime", e.Lifetime.String())
	}
	if e.Err != nil {
		attrs = append(attrs, "error", e.Err)
	}
	return attrs
}
