package harness

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/emilian8/crew-call-frontend/internal/api"
	"github.com/emilian8/crew-call-frontend/internal/duty"
	"github.com/emilian8/crew-call-frontend/internal/event"
	"github.com/emilian8/crew-call-frontend/internal/model"
	"github.com/emilian8/crew-call-frontend/internal/notify"
	"github.com/emilian8/crew-call-frontend/internal/session"
	"github.com/emilian8/crew-call-frontend/internal/template"
	"github.com/emilian8/crew-call-frontend/internal/testutil"
)

// Runner holds one assembled cache stack wired to a scripted fake
// service. The duty cache runs on a fixed clock so snapshots are
// deterministic.
type Runner struct {
	Server        *testutil.ScriptServer
	Session       *session.Cache
	Events        *event.Cache
	Duties        *duty.Cache
	Templates     *template.Cache
	Notifications *notify.Cache
}

// NewRunner wires a fresh stack against a new fake service.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	server := testutil.NewScriptServer(t)

	var sess *session.Cache
	client, err := api.NewClient(api.ClientConfig{
		BaseURL: server.URL(),
		Credentials: api.CredentialFunc(func() (string, bool) {
			if sess == nil {
				return "", false
			}
			return sess.Credential()
		}),
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	clock := testutil.NewFixedClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), time.Minute)
	r := &Runner{
		Server:        server,
		Events:        event.New(client, nil),
		Duties:        duty.New(client, nil, duty.WithClock(clock)),
		Templates:     template.New(client, nil),
		Notifications: notify.New(client, nil),
	}
	sess = session.New(client, testutil.NewMemoryKV(), nil)
	sess.RegisterSink(r.Events)
	sess.RegisterSink(r.Duties)
	sess.RegisterSink(r.Templates)
	sess.RegisterSink(r.Notifications)
	sess.SetAfterLogin(func(ctx context.Context) {
		_ = r.Events.LoadMine(ctx)
	})
	r.Session = sess
	return r
}

// Run scripts the responses, executes the flow, and checks the
// assertions. The first failing step or assertion aborts the run.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) error {
	for _, response := range scenario.Responses {
		status := response.Status
		if status == 0 {
			status = http.StatusOK
		}
		if response.Sticky {
			r.Server.RespondAlways(response.Endpoint, response.Body)
			continue
		}
		r.Server.RespondStatus(response.Endpoint, status, response.Body)
	}

	for i, step := range scenario.Flow {
		err := r.step(ctx, step)
		if step.ExpectError != "" {
			if err == nil {
				return fmt.Errorf("flow[%d] %s: expected error containing %q, got success", i, step.Op, step.ExpectError)
			}
			if !strings.Contains(err.Error(), step.ExpectError) {
				return fmt.Errorf("flow[%d] %s: expected error containing %q, got %q", i, step.Op, step.ExpectError, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("flow[%d] %s: %w", i, step.Op, err)
		}
	}

	for i, assertion := range scenario.Assertions {
		if err := r.check(assertion); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func (r *Runner) step(ctx context.Context, step FlowStep) error {
	args := step.Args
	switch step.Op {
	case "login":
		return r.Session.Login(ctx, argString(args, "email"), argString(args, "password"))
	case "register":
		_, err := r.Session.Register(ctx, argString(args, "email"), argString(args, "password"))
		return err
	case "logout":
		r.Session.Logout()
		return nil

	case "events.load":
		return r.Events.LoadMine(ctx)
	case "events.create":
		return r.Events.Create(ctx, argString(args, "title"), argString(args, "startsAt"), argString(args, "endsAt"))
	case "events.invite":
		return r.Events.Invite(ctx, argString(args, "event"), argString(args, "user"), model.Role(argString(args, "role")))
	case "events.remove":
		return r.Events.RemoveMember(ctx, argString(args, "event"), argString(args, "user"))
	case "events.activate":
		return r.Events.SetActive(ctx, argString(args, "event"), argBool(args, "active"))
	case "events.delete":
		return r.Events.Delete(ctx, argString(args, "event"))

	case "duties.select":
		r.Duties.SetCurrentEvent(r.eventByID(argString(args, "event")))
		return nil
	case "duties.load":
		eventID := argString(args, "event")
		r.Duties.SetCurrentEvent(r.eventByID(eventID))
		return r.Duties.LoadForEvent(ctx, eventID)
	case "duties.add":
		return r.Duties.Add(ctx, argString(args, "title"), argString(args, "dueAt"), argString(args, "assignee"))
	case "duties.assign":
		return r.Duties.Assign(ctx, argString(args, "duty"), argString(args, "assignee"))
	case "duties.unassign":
		return r.Duties.Unassign(ctx, argString(args, "duty"))
	case "duties.done":
		return r.Duties.MarkDone(ctx, argString(args, "duty"))
	case "duties.reopen":
		return r.Duties.Reopen(ctx, argString(args, "duty"))
	case "duties.update":
		return r.Duties.Update(ctx, argString(args, "duty"), argString(args, "title"), argString(args, "dueAt"))
	case "duties.delete":
		return r.Duties.Delete(ctx, argString(args, "duty"))
	case "duties.archive":
		return r.Duties.Archive(ctx, argString(args, "duty"))

	case "templates.list":
		return r.Templates.List(ctx)
	case "templates.create":
		return r.Templates.Create(ctx, argString(args, "title"), argStrings(args, "members"), argStrings(args, "duties"))
	case "templates.delete":
		return r.Templates.Delete(ctx, argString(args, "template"))
	case "templates.apply":
		_, err := r.Templates.ApplyToEvent(ctx, argString(args, "template"), argString(args, "event"))
		return err

	case "notify.refresh":
		return r.Notifications.Refresh(ctx, argBool(args, "onlyUnread"))
	case "notify.read":
		return r.Notifications.MarkRead(ctx, argString(args, "notification"))
	case "notify.delete":
		return r.Notifications.Delete(ctx, argString(args, "notification"))
	}
	return fmt.Errorf("unknown op %q", step.Op)
}

// eventByID prefers the event cache's copy, so a selected event carries
// its loaded duties; an unknown id still selects a bare event.
func (r *Runner) eventByID(id string) model.Event {
	for _, ev := range r.Events.Events() {
		if ev.ID == id {
			return ev
		}
	}
	return model.Event{ID: id}
}

func (r *Runner) check(a Assertion) error {
	switch a.Type {
	case AssertCallCount:
		got := len(r.Server.Calls(a.Endpoint))
		if got != a.Count {
			return fmt.Errorf("call_count %s: want %d, got %d", a.Endpoint, a.Count, got)
		}
	case AssertErrorSlot:
		slot, err := r.errorSlot(a.Cache)
		if err != nil {
			return err
		}
		if slot != a.Equals {
			return fmt.Errorf("error_slot %s: want %q, got %q", a.Cache, a.Equals, slot)
		}
	case AssertArchived:
		if got := r.Duties.IsArchived(a.Event, a.Duty); got != a.Present {
			return fmt.Errorf("archived (%s,%s): want %t, got %t", a.Event, a.Duty, a.Present, got)
		}
	case AssertDutyStatus:
		for _, d := range r.Duties.Duties() {
			if d.ID != a.Duty {
				continue
			}
			if string(d.Status) != a.Status {
				return fmt.Errorf("duty_status %s: want %s, got %s", a.Duty, a.Status, d.Status)
			}
			if a.Assignee != "" && d.Assignee != a.Assignee {
				return fmt.Errorf("duty_status %s: want assignee %s, got %s", a.Duty, a.Assignee, d.Assignee)
			}
			return nil
		}
		return fmt.Errorf("duty_status %s: duty not in local list", a.Duty)
	}
	return nil
}

func (r *Runner) errorSlot(cache string) (string, error) {
	switch cache {
	case "session":
		return r.Session.LastError(), nil
	case "events":
		return r.Events.LastError(), nil
	case "duties":
		return r.Duties.LastError(), nil
	case "templates":
		return r.Templates.LastError(), nil
	case "notifications":
		return r.Notifications.LastError(), nil
	}
	return "", fmt.Errorf("unknown cache %q", cache)
}

// Snapshot captures the final local state for golden comparison.
type Snapshot struct {
	Session       snapshotSession      `json:"session"`
	Events        []model.Event        `json:"events"`
	Duties        []snapshotDuty       `json:"duties"`
	Templates     []model.Template     `json:"templates"`
	Notifications []model.Notification `json:"notifications"`
	Errors        map[string]string    `json:"errors"`
}

type snapshotSession struct {
	Authenticated bool   `json:"authenticated"`
	Actor         string `json:"actor"`
}

type snapshotDuty struct {
	model.Duty
	Archived bool `json:"archived"`
}

// Snapshot renders the current state of every cache.
func (r *Runner) Snapshot() Snapshot {
	snap := Snapshot{
		Session: snapshotSession{
			Authenticated: r.Session.Authenticated(),
			Actor:         r.Session.ActorID(),
		},
		Events:        r.Events.Events(),
		Templates:     r.Templates.Templates(),
		Notifications: r.Notifications.Notifications(),
		Errors: map[string]string{
			"session":       r.Session.LastError(),
			"events":        r.Events.LastError(),
			"duties":        r.Duties.LastError(),
			"templates":     r.Templates.LastError(),
			"notifications": r.Notifications.LastError(),
		},
	}
	eventID := ""
	if current, ok := r.Duties.CurrentEvent(); ok {
		eventID = current.ID
	}
	for _, d := range r.Duties.Duties() {
		snap.Duties = append(snap.Duties, snapshotDuty{
			Duty:     d,
			Archived: r.Duties.IsArchived(eventID, d.ID),
		})
	}
	return snap
}

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func argBool(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func argStrings(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
