package classifier

import (
	"fmt"
	"strings"

	"github.com/onecommit/onecommit/internal/model"
)

const systemPrompt = "You are a code review expert. Analyze commits and provide structured feedback in JSON format."

const maxPromptFiles = 20

func buildPrompt(in model.ClassifyInput) string {
	var files strings.Builder
	shown := in.Files
	if len(shown) > maxPromptFiles {
		shown = shown[:maxPromptFiles]
	}
	for _, f := range shown {
		fmt.Fprintf(&files, "- %s (%s, +%d/-%d)\n", f.Filename, f.Status, f.Additions, f.Deletions)
	}
	if len(in.Files) > maxPromptFiles {
		fmt.Fprintf(&files, "... and %d more files\n", len(in.Files)-maxPromptFiles)
	}

	return fmt.Sprintf(`Analyze this Git commit and provide a JSON response with the following structure:

{
  "qualityScore": 0-100,
  "isSpam": boolean,
  "category": "feature|bugfix|refactor|docs|test|chore|other",
  "summary": "brief description",
  "feedback": "constructive feedback",
  "suggestions": ["suggestion1", "suggestion2"],
  "technologies": ["tech1", "tech2"],
  "complexity": "low|medium|high"
}

Commit Message:
%s

Statistics:
- Additions: %d
- Deletions: %d
- Files Changed: %d

Files:
%s
Scoring Guidelines:
- Quality Score (0-100): Code quality, commit message clarity, meaningful changes
- Is Spam: Detect meaningless commits like "test", "asdf", minimal changes
- Category: Classify the type of work done
- Summary: 1-2 sentence description of what was done
- Feedback: Constructive advice for improvement
- Suggestions: 2-3 specific recommendations
- Technologies: Programming languages/frameworks used
- Complexity: Based on scope and difficulty

Be critical but fair. Focus on meaningful contributions.`,
		in.Message, in.Stats.Additions, in.Stats.Deletions, in.Stats.FilesChanged, files.String())
}
