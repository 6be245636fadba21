package googlecal

import "google.golang.org/api/calendar/v3"

const (
	DefaultMaxResults = 50
	MaxMaxResults     = 2500
)

type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type Event struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
	Location    string    `json:"location,omitempty"`
	HTMLLink    string    `json:"htmlLink,omitempty"`
	MeetLink    string    `json:"meetLink,omitempty"`
}

func normalizeEvents(items []*calendar.Event) []Event {
	events := make([]Event, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		events = append(events, normalizeEvent(item))
	}
	return events
}

func normalizeEvent(item *calendar.Event) Event {
	ev := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       eventTime(item.Start),
		End:         eventTime(item.End),
		Location:    item.Location,
		HTMLLink:    item.HtmlLink,
		MeetLink:    meetLink(item),
	}
	if ev.Summary == "" {
		ev.Summary = "No title"
	}
	return ev
}

func eventTime(t *calendar.EventDateTime) EventTime {
	if t == nil {
		return EventTime{}
	}
	return EventTime{DateTime: t.DateTime, Date: t.Date, TimeZone: t.TimeZone}
}

// meetLink prefers the conference video entry point over the legacy hangout link.
func meetLink(item *calendar.Event) string {
	if item.ConferenceData != nil {
		for _, ep := range item.ConferenceData.EntryPoints {
			if ep != nil && ep.EntryPointType == "video" && ep.Uri != "" {
				return ep.Uri
			}
		}
	}
	return item.HangoutLink
}
