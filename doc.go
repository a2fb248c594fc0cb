// Package hostjobs tracks host lifecycle states and gates operational jobs on them.
//
// # Overview
//
// Every managed host sits in exactly one lifecycle state. Jobs such as
// reboot_host declare which states they accept, and the dispatcher only runs a
// job when the host's state at that moment allows it.
//
//	undeployed → unconfigured → packages_installed → managed → monitored → working
//	removed
//
// The platform consists of these components:
//   - Models: HostState, Host and Target with JSON-LD/Schema.org encoding
//   - Jobs: state-gated job definitions and the job catalog
//   - Dispatcher: per-host serialized state changes and job dispatch
//   - Storage: in-memory or CouchDB-backed host inventory
//   - API Server: REST and WebSocket interface
//
// # Usage
//
// Start the API server:
//
//	hostjobs server --config configs/config.yaml
//
// Inspect states and jobs offline:
//
//	hostjobs states
//	hostjobs jobs check reboot_host --state working
//
// Work with a running server:
//
//	hostjobs hosts create oss-01 --state undeployed
//	hostjobs hosts set-state oss-01 managed
//	hostjobs hosts dispatch oss-01 reboot_host
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (config.yaml)
//   - Environment variables (HJ_ prefix)
//   - .env file
//
// Example configuration:
//
//	server:
//	  host: 0.0.0.0
//	  port: 8080
//	storage:
//	  backend: couchdb
//	couchdb:
//	  url: http://localhost:5984
//	  database: hostjobs
//	  username: admin
//	  password: password
//	security:
//	  auth_enabled: true
//	  jwt_secret: change-me
//
// # API Endpoints
//
// Hosts:
//   - GET    /api/v1/hosts                 - List hosts (paginated, ?state=&datacenter=)
//   - POST   /api/v1/hosts                 - Create host
//   - GET    /api/v1/hosts/:id             - Get host by ID
//   - DELETE /api/v1/hosts/:id             - Delete host
//   - PUT    /api/v1/hosts/:id/state       - Change host state
//
// Jobs:
//   - GET  /api/v1/jobs                    - Registered jobs
//   - GET  /api/v1/hosts/:id/jobs          - Jobs the host can run now
//   - GET  /api/v1/hosts/:id/jobs/:job     - Check a job against a host
//   - POST /api/v1/hosts/:id/jobs/:job     - Dispatch a job to a host
//   - POST /api/v1/jobs/:job/dispatch      - Dispatch a job to several hosts
//
// System:
//   - GET  /api/v1/states                  - Lifecycle states in order
//   - GET  /api/v1/stats                   - Inventory statistics
//   - POST /api/v1/validate/host           - Validate a host document
//   - GET  /api/v1/ws/events               - Real-time host and job events
//   - GET  /api/v1/ws/stats                - WebSocket statistics
//
// # JSON-LD Models
//
// Host (Schema.org ComputerSystem):
//
//	{
//	  "@context": "https://schema.org",
//	  "@type": "ComputerSystem",
//	  "@id": "host:oss-01",
//	  "name": "oss-01",
//	  "ipAddress": "10.0.0.21",
//	  "location": "fra-1",
//	  "hostState": "packages_installed"
//	}
//
// # Development
//
// Run tests:
//
//	go test ./...
//
// Build the binary:
//
//	go build -o hostjobs ./cmd/hostjobs
//
// # Technology Stack
//
//   - Echo v4 (Web framework)
//   - CouchDB 3.3+ through the EVE library
//   - Cobra and Viper (CLI and configuration)
//   - gorilla/websocket (event stream)
package hostjobs
