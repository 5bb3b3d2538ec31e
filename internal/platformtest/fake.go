// Package platformtest provides an in-memory chat platform for tests of
// the ticket lifecycle and the interaction handlers.
package platformtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Operation names accepted by Fail.
const (
	OpChannel         = "Channel"
	OpGuildChannels   = "GuildChannels"
	OpCreateChannel   = "CreateChannel"
	OpChannelMessages = "ChannelMessages"
	OpSendMessage     = "SendMessage"
	OpDeleteChannel   = "DeleteChannel"
	OpSetWatching     = "SetWatching"
)

const discordEpochMillis = 1420070400000

// ErrUnknownChannel mirrors the platform's 404 for a missing channel.
var ErrUnknownChannel = errors.New("HTTP 404 Not Found: Unknown Channel")

// SentMessage is a message posted through SendMessage.
type SentMessage struct {
	ChannelID string
	Message   *discordgo.MessageSend
	Files     map[string]string
}

// Fake is a goroutine-safe in-memory Platform.
type Fake struct {
	BotID string

	// CreateHook, when set, can veto channel creation.
	CreateHook func(data discordgo.GuildChannelCreateData) error

	mu       sync.Mutex
	base     time.Time
	seq      int64
	channels map[string]*discordgo.Channel
	order    []string
	history  map[string][]*discordgo.Message
	sent     []SentMessage
	deleted  []string
	failures map[string]error
	calls    map[string]int
	presence []string
}

// New returns an empty platform whose bot identity is botID.
func New(botID string) *Fake {
	return &Fake{
		BotID:    botID,
		base:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		channels: make(map[string]*discordgo.Channel),
		history:  make(map[string][]*discordgo.Message),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// Fail makes every later call to op return err. A nil err clears it.
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// AddCategory registers a category channel.
func (f *Fake) AddCategory(guildID, name string) *discordgo.Channel {
	return f.addChannel(&discordgo.Channel{GuildID: guildID, Name: name, Type: discordgo.ChannelTypeGuildCategory})
}

// AddTextChannel registers a text channel under parentID.
func (f *Fake) AddTextChannel(guildID, parentID, name string, overwrites ...*discordgo.PermissionOverwrite) *discordgo.Channel {
	return f.addChannel(&discordgo.Channel{
		GuildID:              guildID,
		ParentID:             parentID,
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: overwrites,
	})
}

// AddMessage appends a message authored by username to channelID.
func (f *Fake) AddMessage(channelID, username, content string) *discordgo.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appendMessageLocked(channelID, &discordgo.Message{
		Content: content,
		Author:  &discordgo.User{ID: "u-" + username, Username: username},
	})
}

// AppendMessage appends a fully specified message; ID and Timestamp are assigned.
func (f *Fake) AppendMessage(channelID string, msg *discordgo.Message) *discordgo.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appendMessageLocked(channelID, msg)
}

// ChannelByName returns the first live channel called name.
func (f *Fake) ChannelByName(name string) *discordgo.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if ch, ok := f.channels[id]; ok && ch.Name == name {
			return ch
		}
	}
	return nil
}

// Exists reports whether channelID has not been deleted.
func (f *Fake) Exists(channelID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.channels[channelID]
	return ok
}

// Sent returns every message posted to channelID in order.
func (f *Fake) Sent(channelID string) []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SentMessage
	for _, msg := range f.sent {
		if msg.ChannelID == channelID {
			out = append(out, msg)
		}
	}
	return out
}

// Deleted returns the ids of deleted channels in deletion order.
func (f *Fake) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// Presence returns every status text set so far.
func (f *Fake) Presence() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.presence...)
}

func (f *Fake) Channel(_ context.Context, channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.callLocked(OpChannel); err != nil {
		return nil, err
	}
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, ErrUnknownChannel
	}
	return ch, nil
}

func (f *Fake) GuildChannels(_ context.Context, guildID string) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.callLocked(OpGuildChannels); err != nil {
		return nil, err
	}
	var out []*discordgo.Channel
	for _, id := range f.order {
		if ch, ok := f.channels[id]; ok && ch.GuildID == guildID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *Fake) CreateChannel(_ context.Context, guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	f.mu.Lock()
	if err := f.callLocked(OpCreateChannel); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	hook := f.CreateHook
	f.mu.Unlock()

	if hook != nil {
		if err := hook(data); err != nil {
			return nil, err
		}
	}
	return f.addChannel(&discordgo.Channel{
		GuildID:              guildID,
		ParentID:             data.ParentID,
		Name:                 data.Name,
		Type:                 data.Type,
		PermissionOverwrites: data.PermissionOverwrites,
	}), nil
}

func (f *Fake) ChannelMessages(_ context.Context, channelID string, limit int, beforeID string) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.callLocked(OpChannelMessages); err != nil {
		return nil, err
	}
	if _, ok := f.channels[channelID]; !ok {
		return nil, ErrUnknownChannel
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	history := f.history[channelID]
	end := len(history)
	if beforeID != "" {
		cursor := snowflake(beforeID)
		end = sort.Search(len(history), func(i int) bool { return snowflake(history[i].ID) >= cursor })
	}
	start := end - limit
	if start < 0 {
		start = 0
	}

	page := make([]*discordgo.Message, 0, end-start)
	for i := end - 1; i >= start; i-- {
		page = append(page, history[i])
	}
	return page, nil
}

func (f *Fake) SendMessage(_ context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.callLocked(OpSendMessage); err != nil {
		return nil, err
	}
	if _, ok := f.channels[channelID]; !ok {
		return nil, ErrUnknownChannel
	}

	record := SentMessage{ChannelID: channelID, Message: msg, Files: map[string]string{}}
	posted := &discordgo.Message{
		Content: msg.Content,
		Embeds:  msg.Embeds,
		Author:  &discordgo.User{ID: f.BotID, Username: "ticket-bot", Bot: true},
	}
	for _, file := range msg.Files {
		body, err := io.ReadAll(file.Reader)
		if err != nil {
			return nil, fmt.Errorf("read attachment %s: %w", file.Name, err)
		}
		record.Files[file.Name] = string(body)
		posted.Attachments = append(posted.Attachments, &discordgo.MessageAttachment{
			Filename: file.Name,
			URL:      "https://cdn.example.test/" + channelID + "/" + file.Name,
		})
	}
	f.sent = append(f.sent, record)
	return f.appendMessageLocked(channelID, posted), nil
}

func (f *Fake) DeleteChannel(_ context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.callLocked(OpDeleteChannel); err != nil {
		return err
	}
	if _, ok := f.channels[channelID]; !ok {
		return ErrUnknownChannel
	}
	delete(f.channels, channelID)
	delete(f.history, channelID)
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *Fake) BotUserID() string { return f.BotID }

// SetWatching records the status text.
func (f *Fake) SetWatching(status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.callLocked(OpSetWatching); err != nil {
		return err
	}
	f.presence = append(f.presence, status)
	return nil
}

func (f *Fake) addChannel(ch *discordgo.Channel) *discordgo.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch.ID = f.nextIDLocked()
	f.channels[ch.ID] = ch
	f.order = append(f.order, ch.ID)
	return ch
}

func (f *Fake) appendMessageLocked(channelID string, msg *discordgo.Message) *discordgo.Message {
	msg.ID = f.nextIDLocked()
	msg.ChannelID = channelID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = f.base.Add(time.Duration(f.seq) * time.Second)
	}
	f.history[channelID] = append(f.history[channelID], msg)
	return msg
}

// nextIDLocked returns increasing snowflakes whose embedded time advances
// one second per id.
func (f *Fake) nextIDLocked() string {
	f.seq++
	millis := f.base.Add(time.Duration(f.seq)*time.Second).UnixMilli() - discordEpochMillis
	return strconv.FormatInt(millis<<22|f.seq&0xFFF, 10)
}

func (f *Fake) callLocked(op string) error {
	f.calls[op]++
	return f.failures[op]
}

func snowflake(id string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
