// Package notify delivers event and commit announcements to Discord. All
// delivery is fire and forget: failures are logged and never reach intake.
package notify

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/onecommit/onecommit/internal/config"
	"github.com/onecommit/onecommit/internal/model"
)

// Session is the slice of discordgo used by the notifier, extracted so tests
// can substitute a mock.
type Session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Close() error
}

var _ Session = (*discordgo.Session)(nil)

var _ model.Notifier = (*Discord)(nil)

// Discord posts announcements to a Discord channel. Events carrying their
// own channel ID override the default channel.
type Discord struct {
	session   Session
	channelID string
	log       logze.Logger
}

// NewDiscord connects a Discord notifier.
func NewDiscord(cfg config.DiscordConfig) (*Discord, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create discord session")
	}
	if err := session.Open(); err != nil {
		return nil, errm.Wrap(err, "failed to open discord session")
	}

	return &Discord{
		session:   session,
		channelID: cfg.ChannelID,
		log:       logze.With("component", "notify"),
	}, nil
}

// Close shuts the Discord session down.
func (d *Discord) Close() error {
	return d.session.Close()
}

// CommitProcessed announces a scored commit.
func (d *Discord) CommitProcessed(event *model.Event, commit *model.Commit, repo *model.Repo) {
	var b strings.Builder
	if commit.Flags.IsLateSubmission {
		fmt.Fprintf(&b, "Late commit to **%s** (not scored)\n", repo.FullName)
	} else {
		fmt.Fprintf(&b, "New commit to **%s**: +%d points\n", repo.FullName, commit.Score.Total)
	}
	fmt.Fprintf(&b, "`%s` %s", shortSHA(commit.SHA), firstLine(commit.Message))

	d.send(event, b.String())
}

// EventStarted announces the opening of the scoring window.
func (d *Discord) EventStarted(event *model.Event) {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** has started! %d participants, %d hours on the clock.\n",
		event.Name, event.CurrentParticipants, event.DurationHours)
	if event.EndTime != nil {
		fmt.Fprintf(&b, "Ends at %s", event.EndTime.Format("2006-01-02 15:04 MST"))
	}

	d.send(event, b.String())
}

// EventFinished announces the final standings.
func (d *Discord) EventFinished(event *model.Event, top []*model.Score) {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** has finished with %d commits!\n", event.Name, event.TotalCommits)
	if len(top) > 0 {
		b.WriteString("Final standings:\n")
	}
	for _, score := range top {
		fmt.Fprintf(&b, "%d. <@%s> with %d points (%d commits)\n",
			score.Rank, score.UserID, score.TotalScore, score.ValidCommits)
	}

	d.send(event, b.String())
}

// AchievementEarned announces a granted achievement.
func (d *Discord) AchievementEarned(event *model.Event, userID string, achievement model.AchievementType) {
	d.send(event, fmt.Sprintf("<@%s> earned the **%s** achievement! +%d points",
		userID, achievementTitle(achievement), model.AchievementBonus))
}

// send delivers off the caller's goroutine, so intake never waits on the
// Discord API.
func (d *Discord) send(event *model.Event, content string) {
	channelID := d.channelID
	if event != nil && event.DiscordChannelID != "" {
		channelID = event.DiscordChannelID
	}
	if channelID == "" {
		return
	}

	go func() {
		if _, err := d.session.ChannelMessageSend(channelID, content); err != nil {
			d.log.Error("failed to send discord message", "error", err, "channel_id", channelID)
		}
	}()
}

func achievementTitle(t model.AchievementType) string {
	switch t {
	case model.AchievementFirstCommit:
		return "First Commit"
	case model.AchievementSpeedDemon:
		return "Speed Demon"
	case model.AchievementQualityMaster:
		return "Quality Master"
	case model.AchievementNightOwl:
		return "Night Owl"
	case model.AchievementEarlyBird:
		return "Early Bird"
	default:
		return string(t)
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
