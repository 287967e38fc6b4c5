package model

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// The remote store keys every document's identifier under "_id". The
// client-facing ID field shadows it on every read; raw server field names
// never leak past this file.
const rawIDField = "_id"

// DutyFromDocument maps one duty document into a Duty entity.
func DutyFromDocument(doc map[string]any) Duty {
	due, _ := NormalizeInstant(doc["dueAt"])
	updated, _ := NormalizeInstant(doc["updatedAt"])
	return Duty{
		ID:        docString(doc, rawIDField),
		Title:     normText(docString(doc, "title")),
		DueAt:     due,
		Status:    DutyStatus(docString(doc, "status")),
		Assignee:  docString(doc, "assignee"),
		Event:     docString(doc, "event"),
		UpdatedAt: updated,
	}
}

// EventFromDocument maps one event document into an Event entity. The
// duties list starts empty; it is attached lazily by the duty cache.
func EventFromDocument(doc map[string]any) Event {
	starts, _ := NormalizeInstant(doc["startsAt"])
	ends, _ := NormalizeInstant(doc["endsAt"])
	return Event{
		ID:       docString(doc, rawIDField),
		Title:    normText(docString(doc, "title")),
		StartsAt: starts,
		EndsAt:   ends,
		Active:   docBool(doc, "active"),
		Duties:   []Duty{},
	}
}

// MemberFromDocument maps one membership document into a Member entity.
func MemberFromDocument(doc map[string]any) Member {
	return Member{
		Actor: docString(doc, "user"),
		Role:  Role(docString(doc, "role")),
	}
}

// TemplateFromDocument maps one template document into a Template entity.
func TemplateFromDocument(doc map[string]any) Template {
	created, _ := NormalizeInstant(doc["createdAt"])
	updated, _ := NormalizeInstant(doc["updatedAt"])
	return Template{
		ID:             docString(doc, rawIDField),
		Owner:          docString(doc, "owner"),
		Title:          normText(docString(doc, "title")),
		Members:        docStrings(doc, "members"),
		StandardDuties: docStrings(doc, "standardDuties"),
		CreatedAt:      created,
		UpdatedAt:      updated,
	}
}

// NotificationFromDocument maps one notification document into a
// Notification entity.
func NotificationFromDocument(doc map[string]any) Notification {
	created, _ := NormalizeInstant(doc["createdAt"])
	return Notification{
		ID:        docString(doc, rawIDField),
		Recipient: docString(doc, "recipient"),
		Subject:   normText(docString(doc, "subject")),
		Body:      normText(docString(doc, "body")),
		CreatedAt: created,
		Unread:    docBool(doc, "unread"),
	}
}

// DutiesFromDocuments decodes a raw server payload holding a list of duty
// documents and maps each one.
func DutiesFromDocuments(raw json.RawMessage) ([]Duty, error) {
	docs, err := decodeDocuments(raw)
	if err != nil {
		return nil, err
	}
	duties := make([]Duty, len(docs))
	for i, doc := range docs {
		duties[i] = DutyFromDocument(doc)
	}
	return duties, nil
}

// MembersFromDocuments decodes a raw membership list payload.
func MembersFromDocuments(raw json.RawMessage) ([]Member, error) {
	docs, err := decodeDocuments(raw)
	if err != nil {
		return nil, err
	}
	members := make([]Member, len(docs))
	for i, doc := range docs {
		members[i] = MemberFromDocument(doc)
	}
	return members, nil
}

// TemplatesFromDocuments decodes a raw template list payload.
func TemplatesFromDocuments(raw json.RawMessage) ([]Template, error) {
	docs, err := decodeDocuments(raw)
	if err != nil {
		return nil, err
	}
	templates := make([]Template, len(docs))
	for i, doc := range docs {
		templates[i] = TemplateFromDocument(doc)
	}
	return templates, nil
}

// NotificationsFromDocuments decodes a raw notification list payload.
func NotificationsFromDocuments(raw json.RawMessage) ([]Notification, error) {
	docs, err := decodeDocuments(raw)
	if err != nil {
		return nil, err
	}
	notifications := make([]Notification, len(docs))
	for i, doc := range docs {
		notifications[i] = NotificationFromDocument(doc)
	}
	return notifications, nil
}

// DocumentFromRaw decodes a single-document payload for the mappers above.
func DocumentFromRaw(raw json.RawMessage) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return doc, nil
}

func decodeDocuments(raw json.RawMessage) ([]map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decoding document list: %w", err)
	}
	return docs, nil
}

func docString(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

func docBool(doc map[string]any, key string) bool {
	b, _ := doc[key].(bool)
	return b
}

func docStrings(doc map[string]any, key string) []string {
	items, _ := doc[key].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// normText puts mapped text fields into NFC so that local equality checks
// are byte-wise regardless of how the server composed the string.
func normText(s string) string {
	return norm.NFC.String(s)
}
