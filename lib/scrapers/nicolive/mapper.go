package nicolive

import (
	"strings"
	"time"
)

type HostType string

const (
	HostCommunity HostType = "community"
	HostChannel   HostType = "channel"
	HostOfficial  HostType = "official"
)

type Status string

const (
	StatusReserved Status = "reserved"
	StatusOnAir    Status = "on_air"
	StatusEnded    Status = "ended"
	StatusUnknown  Status = "unknown"
)

const (
	maxStreamerNameLen = 64
	maxTitleLen        = 100
)

// Streamer is the account, channel or company hosting a broadcast,
// identified by its platform id. Channel ids keep their "ch" prefix so
// they can never collide with community user ids.
type Streamer struct {
	ProviderID  string
	Name        string
	ProfileURL  string
	CompanyName string
	HostType    HostType
}

// Streaming is one broadcast session. Begin and end times are nil
// until the platform reports them.
type Streaming struct {
	StreamID  string
	Title     string
	BeginTime *time.Time
	EndTime   *time.Time
	Status    Status
}

type Broadcast struct {
	Streamer  Streamer
	Streaming Streaming
}

// Classify reads the host type discriminator of the payload. An
// unrecognized value is surfaced, never defaulted.
func Classify(payload *WatchPayload) (HostType, error) {
	switch payload.Program.ProviderType {
	case "community":
		return HostCommunity, nil
	case "channel":
		return HostChannel, nil
	case "official":
		return HostOfficial, nil
	}
	return "", &UnknownHostTypeError{Value: payload.Program.ProviderType}
}

// MapBroadcast turns a decoded payload into a Streamer and Streaming
// pair, not yet persisted.
func MapBroadcast(payload *WatchPayload) (Broadcast, error) {
	host, err := Classify(payload)
	if err != nil {
		return Broadcast{}, err
	}

	streamer, err := mapStreamer(payload, host)
	if err != nil {
		return Broadcast{}, err
	}
	streaming, err := mapStreaming(payload)
	if err != nil {
		return Broadcast{}, err
	}

	return Broadcast{
		Streamer:  streamer,
		Streaming: streaming,
	}, nil
}

func mapStreamer(payload *WatchPayload, host HostType) (Streamer, error) {
	if host == HostCommunity {
		supplier := payload.Program.Supplier
		if supplier.ProgramProviderID == "" {
			return Streamer{}, &MissingFieldError{Field: "program.supplier.programProviderId"}
		}
		if supplier.Name == "" {
			return Streamer{}, &MissingFieldError{Field: "program.supplier.name"}
		}
		return Streamer{
			ProviderID: supplier.ProgramProviderID,
			Name:       clip(supplier.Name, maxStreamerNameLen),
			ProfileURL: supplier.PageURL,
			HostType:   host,
		}, nil
	}

	// channel and official hosts share the socialGroup subtree
	group := payload.SocialGroup
	if group.ID == "" {
		return Streamer{}, &MissingFieldError{Field: "socialGroup.id"}
	}
	if group.Name == "" {
		return Streamer{}, &MissingFieldError{Field: "socialGroup.name"}
	}
	return Streamer{
		ProviderID:  group.ID,
		Name:        clip(group.Name, maxStreamerNameLen),
		CompanyName: group.CompanyName,
		HostType:    host,
	}, nil
}

func mapStreaming(payload *WatchPayload) (Streaming, error) {
	program := payload.Program
	if program.NicoliveProgramID == "" {
		return Streaming{}, &MissingFieldError{Field: "program.nicoliveProgramId"}
	}
	if program.Title == "" {
		return Streaming{}, &MissingFieldError{Field: "program.title"}
	}
	if program.Status == "" {
		return Streaming{}, &MissingFieldError{Field: "program.status"}
	}
	status, err := parseStatus(program.Status)
	if err != nil {
		return Streaming{}, err
	}

	var begin, end *time.Time
	if program.BeginTime != nil {
		t := time.Unix(*program.BeginTime, 0).UTC()
		begin = &t
	}
	if program.EndTime != nil {
		t := time.Unix(*program.EndTime, 0).UTC()
		end = &t
	}
	if begin != nil && end != nil && end.Before(*begin) {
		return Streaming{}, &InvalidTimeRangeError{Begin: *begin, End: *end}
	}

	return Streaming{
		StreamID:  strings.TrimPrefix(program.NicoliveProgramID, "lv"),
		Title:     clip(program.Title, maxTitleLen),
		BeginTime: begin,
		EndTime:   end,
		Status:    status,
	}, nil
}

func parseStatus(s string) (Status, error) {
	switch s {
	case "RESERVED":
		return StatusReserved, nil
	case "ON_AIR":
		return StatusOnAir, nil
	case "ENDED":
		return StatusEnded, nil
	}
	return "", &UnknownStatusError{Value: s}
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
