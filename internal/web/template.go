package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/stopwatch/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"onoff": func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Stopwatch</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.display { font-size: 3em; letter-spacing: 0.05em; margin: 0.5em 0; }
.display .sep { color: #888; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.alarm.on { color: red; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Stopwatch<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<div class="display" id="display">{{range $i, $d := .Digits}}{{if index $.Sep $i}}<span class="sep">:</span>{{end}}<span class="digit">{{$d}}</span>{{end}}</div>

<h2>State</h2>
<table>
<tr><th>Mode</th><td id="mode">{{.State.Mode}}</td></tr>
<tr><th>Status</th><td id="status">{{.State.Status}}</td></tr>
<tr><th>Alarm</th><td id="alarm" class="alarm {{onoff .State.Outputs.Alarm}}">{{onoff .State.Outputs.Alarm}}</td></tr>
<tr><th>Count up</th><td id="count-up" class="{{onoff .State.Outputs.CountUp}}">{{onoff .State.Outputs.CountUp}}</td></tr>
<tr><th>Count down</th><td id="count-down" class="{{onoff .State.Outputs.CountDown}}">{{onoff .State.Outputs.CountDown}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Ticks</th><td>{{.State.Counts.Ticks}}</td></tr>
<tr><th>Alarms</th><td>{{.State.Counts.Alarms}}</td></tr>
<tr><th>Resets</th><td>{{.State.Counts.Resets}}</td></tr>
<tr><th>Pauses</th><td>{{.State.Counts.Pauses}}</td></tr>
<tr><th>Resumes</th><td>{{.State.Counts.Resumes}}</td></tr>
<tr><th>Mode toggles</th><td>{{.State.Counts.ModeToggles}}</td></tr>
<tr><th>Adjustments</th><td>{{.State.Counts.Adjustments}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Adjust policy</th><td>{{.Config.AdjustPolicy}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">metrics</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var display = document.getElementById("display");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function setFlag(id, on, extra) {
    var el = document.getElementById(id);
    el.textContent = on ? "on" : "off";
    el.className = (extra ? extra + " " : "") + (on ? "on" : "off");
  }

  function render(f) {
    var d = f.digits, html = "";
    for (var i = 0; i < d.length; i++) {
      if (i === 2 || i === 4) html += '<span class="sep">:</span>';
      html += '<span class="digit">' + d[i] + "</span>";
    }
    display.innerHTML = html;
    document.getElementById("mode").textContent = f.mode;
    document.getElementById("status").textContent = f.status;
    setFlag("alarm", f.alarm, "alarm");
    setFlag("count-up", f.count_up);
    setFlag("count-down", f.count_down);
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onmessage = function(ev) {
      try { render(JSON.parse(ev.data)); } catch (e) {}
    };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
  }

  connect();
})();
</script>
</body>
</html>
`

// separators marks the digit positions preceded by a colon.
var separators = [6]bool{false, false, true, false, true, false}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Digits []int
		Sep    [6]bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Digits:   status.DigitsOf(snap.State.Time),
		Sep:      separators,
	}
	indexTmpl.Execute(w, data)
}
