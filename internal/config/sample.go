package config

// SampleConfig returns a fully documented configuration file
func SampleConfig() string {
	return `# GenoAssist BR configuration
version: "1.0"

# Analysis service
server:
  # Base URL of the GenoAssist web service
  base_url: "http://localhost:3000"
  # Path of the analysis endpoint
  analyze_path: "/api/analyze"
  # Transport timeout for a single analysis (0 disables it)
  timeout: 120s

# LLM credentials forwarded with each request.
# Leave api_key empty when the server has its own key configured.
credentials:
  # auto detects the provider from the key prefix (AIza... is Google)
  provider: auto   # auto|openai|google
  api_key: ""

# Output formatting
output:
  default_format: text   # text|json|markdown
  color_mode: auto       # auto|always|never
  width: 100             # wrap width for the clinical report
  theme: default         # default|high-contrast|minimal
  show_spinner: true

# Logging
logging:
  # Log file used while the interactive UI owns the terminal.
  # Empty discards log output in the UI.
  file: ""
`
}

// MinimalSampleConfig returns a compact configuration with essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"
server:
  base_url: "http://localhost:3000"
credentials:
  api_key: ""
`
}
