package feed

import (
	"strings"
	"testing"
)

func TestContentExtractor_ValidHTML(t *testing.T) {
	extractor := NewContentExtractor()

	htmlContent := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Appeal after homophobic assault</title>
	</head>
	<body>
		<header>
			<nav>Home | News | Contact</nav>
		</header>
		<main>
			<article>
				<h1>Appeal after homophobic assault in Folkestone</h1>
				<p>Officers investigating a homophobic assault in Folkestone town centre are appealing for witnesses to come forward with any information.</p>
				<p>The victim, a man in his twenties, was approached by a group of people who shouted abuse before punching him. He was taken to hospital with minor injuries.</p>
				<p>Detectives are treating the incident as a hate crime and are reviewing CCTV footage from the area. Anyone with information is asked to call the police.</p>
			</article>
		</main>
		<footer>
			<p>Copyright 2025</p>
		</footer>
	</body>
	</html>
	`

	result, err := extractor.Run([]byte(htmlContent))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(result, "appealing for witnesses") {
		t.Errorf("Expected extracted content to contain the article text, got: %q", result)
	}
	if strings.Contains(result, "Copyright 2025") {
		t.Errorf("Expected extracted content to exclude footer")
	}
	if strings.Contains(result, "<p>") {
		t.Errorf("Expected plain text, got markup")
	}
}

func TestContentExtractor_EmptyInput(t *testing.T) {
	extractor := NewContentExtractor()

	if _, err := extractor.Run(nil); err == nil {
		t.Error("Expected error for empty input")
	}
	if _, err := extractor.Run([]byte("")); err == nil {
		t.Error("Expected error for empty input")
	}
}
