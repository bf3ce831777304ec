package catalog

import "github.com/bryanwahyu/analysis-backend/internal/domain/analysis"

// Default returns the built-in example catalog. It stands in for a real
// scanning engine and covers web, server, database, code, cloud, container,
// dependencies and network.
func Default() *Catalog {
	return New(defaultEntries)
}

var defaultEntries = map[string]Entry{
	"web": {
		Summary: "2 vulnerabilities found in the web application.",
		Findings: []analysis.Finding{
			{Title: "Cross-Site Scripting detected", Severity: "high", Description: "Reflected XSS is possible through the q parameter on /search."},
			{Title: "Possible SQL injection", Severity: "medium", Description: "The username parameter on /login is injectable."},
		},
		AttackScenarios: []analysis.AttackScenario{
			{Title: "Session theft via XSS", Steps: []string{
				"The attacker injects a script through /search",
				"The victim follows the crafted link and the session cookie is exfiltrated",
			}},
		},
	},
	"server": {
		Summary: "Insecure configuration detected on the server.",
		Findings: []analysis.Finding{
			{Title: "SSH exposed to the internet", Severity: "medium", Description: "Port 22 accepts connections from any address."},
			{Title: "Outdated Apache version", Severity: "medium", Description: "The HTTP server banner reports a release with known CVEs."},
		},
		AttackScenarios: []analysis.AttackScenario{
			{Title: "Unauthorized SSH access", Steps: []string{
				"The attacker scans the host for open ports",
				"The attacker logs in over SSH with default credentials",
			}},
		},
	},
	"database": {
		Summary: "Critical risk in the database configuration.",
		Findings: []analysis.Finding{
			{Title: "Weak administrator password", Severity: "high", Description: "The admin account uses the password '123456'."},
			{Title: "Root access without password", Severity: "critical", Description: "The root account accepts local logins with an empty password."},
		},
		AttackScenarios: []analysis.AttackScenario{
			{Title: "Data exfiltration", Steps: []string{
				"The attacker authenticates with the weak credentials",
				"The attacker dumps the complete database",
			}},
		},
	},
	"code": {
		Summary: "Insecure code patterns detected.",
		Findings: []analysis.Finding{
			{Title: "Hardcoded secret", Severity: "high", Description: "A secret key is committed to the source tree."},
			{Title: "Use of eval()", Severity: "high", Description: "User-controlled input reaches eval()."},
		},
		AttackScenarios: []analysis.AttackScenario{
			{Title: "Compromise through a leaked key", Steps: []string{
				"The attacker finds the key in the repository",
				"The attacker uses it to reach internal services",
			}},
		},
	},
	"cloud": {
		Summary: "Exposed cloud configuration.",
		Findings: []analysis.Finding{
			{Title: "Public S3 bucket", Severity: "high", Description: "An AWS S3 bucket allows anonymous reads."},
		},
		AttackScenarios: []analysis.AttackScenario{
			{Title: "Data theft from S3", Steps: []string{
				"The bucket is publicly listable",
				"The attacker downloads sensitive files",
			}},
		},
	},
	"container": {
		Summary: "Container hardening required.",
		Findings: []analysis.Finding{
			{Title: "Unscanned image", Severity: "medium", Description: "No vulnerability scan was recorded for the Docker image."},
			{Title: "Container runs as root", Severity: "medium", Description: "The image does not declare an unprivileged USER."},
		},
		AttackScenarios: []analysis.AttackScenario{
			{Title: "Malware execution in a container", Steps: []string{
				"The unscanned image is deployed",
				"Embedded malware runs at container start",
			}},
		},
	},
	"dependencies": {
		Summary: "Vulnerable dependencies found.",
		Findings: []analysis.Finding{
			{Title: "Vulnerable dependency", Severity: "high", Description: "lodash 4.17.15 is affected by CVE-2020-8203."},
		},
		AttackScenarios: []analysis.AttackScenario{
			{Title: "Compromised dependency attack", Steps: []string{
				"The vulnerable library is exploited",
				"The attacker executes code remotely",
			}},
		},
	},
	"network": {
		Summary: "Insecure ports detected on the network.",
		Findings: []analysis.Finding{
			{Title: "Insecure port exposed", Severity: "medium", Description: "Port 8080 is reachable from the internet."},
			{Title: "Database port open", Severity: "medium", Description: "Port 3306 is reachable from the internet."},
		},
		AttackScenarios: []analysis.AttackScenario{
			{Title: "Access to an internal service", Steps: []string{
				"The exposed port is discovered",
				"The attacker reaches the internal administration panel",
			}},
		},
	},
}
