package slack

import (
	"fmt"
	"strings"
	"unicode/utf8"

	goslack "github.com/slack-go/slack"

	"github.com/chessops/dashboard/pkg/models"
)

const maxBlockTextLength = 2900

var severityEmoji = map[models.Severity]string{
	models.SeverityError:   ":x:",
	models.SeverityWarning: ":warning:",
	models.SeverityInfo:    ":information_source:",
}

var anomalyLabel = map[string]string{
	models.AnomalyLowConfidence: "Low Classification Confidence",
	models.AnomalyCornerDrift:   "Board Corner Drift",
}

func frameURL(frameID, dashboardURL string) string {
	return fmt.Sprintf("%s/frames/%s", dashboardURL, frameID)
}

// BuildAnomalyMessage creates Block Kit blocks for a pipeline anomaly
// notification.
func BuildAnomalyMessage(frameID string, anomaly models.Anomaly, dashboardURL string) []goslack.Block {
	emoji := severityEmoji[anomaly.Severity]
	if emoji == "" {
		emoji = ":question:"
	}
	label := anomalyLabel[anomaly.Type]
	if label == "" {
		label = anomaly.Type
	}

	headerText := fmt.Sprintf("%s *%s* on frame `%s`", emoji, label, frameID)

	var blocks []goslack.Block
	blocks = append(blocks, goslack.NewSectionBlock(
		goslack.NewTextBlockObject(goslack.MarkdownType, headerText, false, false),
		nil, nil,
	))

	var details []string
	if anomaly.Message != "" {
		details = append(details, truncateForSlack(anomaly.Message))
	}
	if len(anomaly.AffectedCells) > 0 {
		details = append(details, fmt.Sprintf("*Affected cells:* %s", strings.Join(anomaly.AffectedCells, ", ")))
	}
	if len(details) > 0 {
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, strings.Join(details, "\n"), false, false),
			nil, nil,
		))
	}

	btn := goslack.NewButtonBlockElement("", "", goslack.NewTextBlockObject(goslack.PlainTextType, "View Frame", false, false))
	btn.URL = frameURL(frameID, dashboardURL)
	blocks = append(blocks, goslack.NewActionBlock("", btn))

	return blocks
}

func truncateForSlack(text string) string {
	if utf8.RuneCountInString(text) <= maxBlockTextLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxBlockTextLength]) + "\n\n_... (truncated — view full details in dashboard)_"
}
