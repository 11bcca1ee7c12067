package config

// DefaultConfigTOML is written by `pqhint init`.
const DefaultConfigTOML = `# pqhint configuration
# Settings left commented out use the built-in defaults.

[pqgram]
# Ancestor window length of each pq-gram
p = 2
# Sibling window length of each pq-gram
q = 3
# Seed for tie-breaking between equally near references (0 = random per run)
seed = 0
# Tags containing one of these fragments are never recommended
markers = ["Metadata", "Literal", "StrId"]

[selection]
# Minimum share of passed tests (percent) for a reference project
min_percentage = 90.0
# Only compare against projects passing a strict superset of the source's tests
individual = false

[recommend]
# Edit groups that are neither single nor complete:
#   "best_effort" pads the longest known sibling context with NULL
#   "strict" reports the program as an impossible edit
intermediate_groups = "best_effort"

[input]
include_patterns = ["*.sb3", "*.json", "*.yaml", "*.yml", "*.py"]
exclude_patterns = []

[output]
# csv, json, yaml or text
format = "csv"
# directory = "reports"

[performance]
max_goroutines = 4
timeout_seconds = 300

[logging]
# debug, info, warn, error
level = "info"
`
