package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/brensch/tanks/game"
)

// Frame is one rendered turn of a replay.
type Frame struct {
	Turn    int
	Board   string
	Actions string
}

// Replay is a whole battle ready for the HTML page.
type Replay struct {
	Title  string
	Frames []Frame
	Result string
}

// Add appends the state after a turn.
func (r *Replay) Add(state *game.State, actions string) {
	r.Frames = append(r.Frames, Frame{Turn: state.Turn, Board: Board(state), Actions: actions})
}

var replayPage = template.Must(template.New("replay").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; background: #1e1e1e; color: #ddd; }
pre.board { font-family: monospace; line-height: 1.1; font-size: 18px; }
section.turn { display: none; }
section.turn.current { display: block; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div id="controls">
<button onclick="show(cur-1)">prev</button>
<input id="slider" type="range" min="0" value="0" oninput="show(+this.value)">
<button onclick="show(cur+1)">next</button>
</div>
{{range $i, $f := .Frames}}<section class="turn{{if eq $i 0}} current{{end}}" data-turn="{{$f.Turn}}">
<h2>Turn {{$f.Turn}}</h2>
<pre class="board">{{$f.Board}}</pre>
<p class="actions">{{$f.Actions}}</p>
</section>
{{end}}<p id="result">{{.Result}}</p>
<script>
var turns = document.querySelectorAll("section.turn");
var cur = 0;
document.getElementById("slider").max = turns.length - 1;
function show(i) {
  if (i < 0 || i >= turns.length) return;
  turns[cur].classList.remove("current");
  turns[i].classList.add("current");
  document.getElementById("slider").value = i;
  cur = i;
}
</script>
</body>
</html>
`))

// WriteHTML renders r as a standalone page with a turn slider.
func WriteHTML(w io.Writer, r *Replay) error {
	if err := replayPage.Execute(w, r); err != nil {
		return fmt.Errorf("render replay: %w", err)
	}
	return nil
}
