// Package paths describes the hub's installation directory.
//
// Nothing about sessions is persisted. The directory only holds logs,
// optional TLS material and static assets:
//
//	~/.claude-remote-hub/
//	  ├── hub.log           (stdout log)
//	  ├── hub-error.log     (error log)
//	  ├── hub.crt, hub.key  (optional TLS material, enables HTTPS)
//	  ├── ttyd-index.html   (optional custom bridge page)
//	  └── icon_chub.png     (home-screen icon)
package paths
