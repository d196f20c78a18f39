package jira

import "github.com/hairizuanbinnoorazman/testcase-generator/testcase"

// adfNode is a node of an Atlassian Document Format document.
type adfNode struct {
	Type    string                 `json:"type"`
	Version int                    `json:"version,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Content []adfNode              `json:"content,omitempty"`
	Text    string                 `json:"text,omitempty"`
}

// textContent returns a single text node, or nothing for empty text.
// ADF rejects text nodes with an empty string.
func textContent(text string) []adfNode {
	if text == "" {
		return nil
	}
	return []adfNode{{Type: "text", Text: text}}
}

func paragraph(text string) adfNode {
	return adfNode{Type: "paragraph", Content: textContent(text)}
}

func heading(level int, text string) adfNode {
	return adfNode{
		Type:    "heading",
		Attrs:   map[string]interface{}{"level": level},
		Content: textContent(text),
	}
}

// buildDescription renders a test case as the issue description: the
// description, the steps as a bullet list and the expected result.
func buildDescription(tc testcase.TestCase) adfNode {
	content := []adfNode{
		paragraph(tc.Description),
		heading(3, "Test Steps:"),
	}

	if len(tc.Steps) > 0 {
		items := make([]adfNode, 0, len(tc.Steps))
		for _, step := range tc.Steps {
			items = append(items, adfNode{
				Type:    "listItem",
				Content: []adfNode{paragraph(step)},
			})
		}
		content = append(content, adfNode{Type: "bulletList", Content: items})
	}

	content = append(content,
		heading(3, "Expected Result:"),
		paragraph(tc.ExpectedResults),
	)

	return adfNode{Type: "doc", Version: 1, Content: content}
}
