package services

import (
	"fmt"
	"strings"
	"time"

	"table-order-kiosk/internal/localstore"
	"table-order-kiosk/internal/model"
	"table-order-kiosk/internal/validation"

	"github.com/google/uuid"
)

const notesTimeLayout = "2006-01-02T15:04:05.000Z07:00"

type NoteInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Endpoint    string         `json:"endpoint"`
	Type        model.NoteType `json:"type"`
}

// Notes returns the saved backend notes, oldest first.
func (d *Diner) Notes() []model.BackendNote {
	notes, ok := localstore.Get[[]model.BackendNote](d.store, localstore.KeyBackendNotes)
	if !ok || notes == nil {
		return []model.BackendNote{}
	}
	return notes
}

func (d *Diner) AddNote(in NoteInput) (model.BackendNote, error) {
	if in.Type == "" {
		in.Type = model.NoteBug
	}
	note := model.BackendNote{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Endpoint:    strings.TrimSpace(in.Endpoint),
		Type:        in.Type,
		CreatedAt:   d.now().UTC().Format(notesTimeLayout),
	}
	if err := validation.Struct(note); err != nil {
		return model.BackendNote{}, err
	}

	d.notesMu.Lock()
	defer d.notesMu.Unlock()
	notes := append(d.Notes(), note)
	if err := localstore.Set(d.store, localstore.KeyBackendNotes, notes); err != nil {
		return model.BackendNote{}, fmt.Errorf("save note: %w", err)
	}
	return note, nil
}

// NotesExport renders the notes as the plain-text hand-off file.
func (d *Diner) NotesExport() string {
	notes := d.Notes()
	blocks := make([]string, 0, len(notes))
	for _, n := range notes {
		date := n.CreatedAt
		if ts, err := time.Parse(time.RFC3339, n.CreatedAt); err == nil {
			date = ts.Local().Format("2006-01-02 15:04:05")
		}
		blocks = append(blocks, fmt.Sprintf("[%s] %s\nEndpoint: %s\nDescription: %s\nDate: %s\n---\n",
			n.Type, n.Title, n.Endpoint, n.Description, date))
	}
	return strings.Join(blocks, "\n")
}
