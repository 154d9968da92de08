package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Nixie-Tech-LLC/masjid/internal/client"
	"github.com/Nixie-Tech-LLC/masjid/internal/content"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// session is one CLI invocation: a controller over its own store, with
// notices echoed to stderr.
type session struct {
	ctl *content.Controller
}

func newSession(apiURL string, stderr io.Writer) *session {
	api := client.New(apiURL, nil)
	notices := content.NewNotifier(nil, func(text string) {
		if text != "" {
			fmt.Fprintln(stderr, text)
		}
	})
	return &session{ctl: content.NewController(api, content.NewStore(), api.Session(), content.WithNotifier(notices))}
}

func (s *session) Close() { s.ctl.Close() }

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *session) printAll(w io.Writer) error {
	store := s.ctl.Store()
	site, _ := store.Site()
	return printJSON(w, map[string]any{
		"site":         site,
		"events":       store.Events().Items(),
		"programs":     store.Programs().Items(),
		"contacts":     store.Contacts().Items(),
		"gallery":      store.Gallery().Items(),
		"footer_links": store.SortedFooterLinks(),
	})
}

func (s *session) items(kind string) (any, bool) {
	switch content.Kind(kind) {
	case content.KindEvents:
		return s.ctl.Events().Items(), true
	case content.KindPrograms:
		return s.ctl.Programs().Items(), true
	case content.KindContacts:
		return s.ctl.Contacts().Items(), true
	case content.KindGallery:
		return s.ctl.Gallery().Items(), true
	case content.KindFooterLinks:
		return s.ctl.Store().SortedFooterLinks(), true
	case content.KindUsers:
		return s.ctl.Users().Items(), true
	}
	return nil, false
}

func (s *session) list(w io.Writer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	items, ok := s.items(args[0])
	if !ok {
		return fmt.Errorf("unknown kind %q", args[0])
	}
	return printJSON(w, items)
}

// site applies key=value pairs. Unknown keys are dropped by the controller.
func (s *session) site(ctx context.Context, w io.Writer, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	patch := make(map[string]any, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", arg)
		}
		patch[k] = v
	}
	if err := s.ctl.SaveSite(ctx, patch); err != nil {
		return err
	}
	site, _ := s.ctl.Store().Site()
	return printJSON(w, site)
}

func (s *session) addEvent(ctx context.Context, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("add-event", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var ev model.Event
	fs.StringVar(&ev.Title, "title", "", "event title")
	fs.StringVar(&ev.Kind, "kind", model.EventOneOff, "oneoff or recurring")
	fs.StringVar(&ev.EventDate, "date", "", "YYYY-MM-DD")
	fs.StringVar(&ev.EventTime, "time", "", "display time")
	fs.StringVar(&ev.WhenText, "when", "", "free text for recurring events")
	fs.StringVar(&ev.Note, "note", "", "note")
	if err := fs.Parse(args); err != nil || ev.Title == "" {
		return errUsage
	}
	if err := s.ctl.Events().Create(ctx, ev); err != nil {
		return err
	}
	return printJSON(w, s.ctl.Events().Items())
}

func (s *session) delete(ctx context.Context, w io.Writer, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	kind, id := content.Kind(args[0]), args[1]
	var err error
	switch kind {
	case content.KindEvents:
		err = s.ctl.Events().Delete(ctx, id)
	case content.KindPrograms:
		err = s.ctl.Programs().Delete(ctx, id)
	case content.KindContacts:
		err = s.ctl.Contacts().Delete(ctx, id)
	case content.KindGallery:
		err = s.ctl.Gallery().Delete(ctx, id)
	case content.KindFooterLinks:
		err = s.ctl.FooterLinks().Delete(ctx, id)
	case content.KindUsers:
		err = s.ctl.Users().Delete(ctx, id)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return err
	}
	items, _ := s.items(string(kind))
	return printJSON(w, items)
}

// update applies key=value pairs to one held record and submits it.
func (s *session) update(ctx context.Context, w io.Writer, args []string) error {
	if len(args) < 3 {
		return errUsage
	}
	kind, id := content.Kind(args[0]), args[1]
	fields := make(map[string]string, len(args)-2)
	for _, arg := range args[2:] {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", arg)
		}
		fields[k] = v
	}
	var err error
	switch kind {
	case content.KindEvents:
		err = updateRecord(ctx, s.ctl.Events(), id, fields)
	case content.KindPrograms:
		err = updateRecord(ctx, s.ctl.Programs(), id, fields)
	case content.KindContacts:
		err = updateRecord(ctx, s.ctl.Contacts(), id, fields)
	case content.KindGallery:
		err = updateRecord(ctx, s.ctl.Gallery(), id, fields)
	case content.KindFooterLinks:
		err = updateRecord(ctx, s.ctl.FooterLinks(), id, fields)
	case content.KindUsers:
		err = updateRecord(ctx, s.ctl.Users(), id, fields)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return err
	}
	items, _ := s.items(string(kind))
	return printJSON(w, items)
}

func updateRecord[T content.Record](ctx context.Context, r *content.Resource[T], id string, fields map[string]string) error {
	for _, row := range r.Items() {
		if row.RecordID() != id {
			continue
		}
		next, err := overlay(row, fields)
		if err != nil {
			return err
		}
		return r.Update(ctx, id, func(t *T) { *t = next })
	}
	return fmt.Errorf("%s %s: %w", r.Kind(), id, content.ErrUnknownRecord)
}

// readOnly fields are assigned by the server.
var readOnly = map[string]bool{"id": true, "created_at": true, "updated_at": true}

// overlay sets fields on a copy of row by their JSON names, converting each
// value to the type the field already holds.
func overlay[T any](row T, fields map[string]string) (T, error) {
	var out T
	raw, err := json.Marshal(row)
	if err != nil {
		return out, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return out, err
	}
	for k, v := range fields {
		current, ok := doc[k]
		if !ok || readOnly[k] {
			return out, fmt.Errorf("unknown or read-only field %q", k)
		}
		switch current.(type) {
		case float64:
			n, err := strconv.Atoi(v)
			if err != nil {
				return out, fmt.Errorf("%s: expected a number, got %q", k, v)
			}
			doc[k] = n
		case bool:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return out, fmt.Errorf("%s: expected true or false, got %q", k, v)
			}
			doc[k] = b
		default:
			doc[k] = v
		}
	}
	if raw, err = json.Marshal(doc); err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}
