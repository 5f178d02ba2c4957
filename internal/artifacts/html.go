package artifacts

import "html/template"

// The template engine escapes every interpolated field, so oracle and
// transcript text cannot inject markup into the document.
var reportTemplate = template.Must(template.New("report").Parse(`<!doctype html>
<html lang="ru">
<head>
    <meta charset="utf-8" />
    <title>Call report {{.CallID}}</title>
    <style>
        body { font-family: 'Inter', Arial, sans-serif; margin: 2rem; color: #0f172a; background: #f8fafc; }
        h1, h2 { color: #0f172a; }
        .score-card { display: flex; gap: 1.5rem; margin-bottom: 1.5rem; }
        .score { background: #fff; padding: 1rem; border-radius: 0.75rem; box-shadow: 0 1px 3px rgba(15, 23, 42, 0.1); }
        table { width: 100%; border-collapse: collapse; margin-top: 1rem; background: #fff; border-radius: 0.75rem; overflow: hidden; box-shadow: 0 1px 3px rgba(15, 23, 42, 0.1); }
        th, td { padding: 0.75rem 1rem; border-bottom: 1px solid #e2e8f0; text-align: left; }
        th { background: #e2e8f0; font-weight: 600; }
        ul { background: #fff; padding: 1rem 1.25rem; border-radius: 0.75rem; box-shadow: 0 1px 3px rgba(15, 23, 42, 0.1); }
        .meta { margin-bottom: 1.5rem; }
    </style>
</head>
<body>
    <h1>Call report — {{.CallID}}</h1>
    <div class="meta">
        <p><strong>Language:</strong> {{.Language}}</p>
        <p><strong>Duration (sec):</strong> {{printf "%.2f" .DurationSec}}</p>
    </div>
    <section class="score-card">
        <div class="score"><h2>Empathy</h2><p>{{printf "%.2f" .Scores.Empathy}}</p></div>
        <div class="score"><h2>Compliance</h2><p>{{printf "%.2f" .Scores.Compliance}}</p></div>
        <div class="score"><h2>Structure</h2><p>{{printf "%.2f" .Scores.Structure}}</p></div>
    </section>
    <section>
        <h2>Operational metrics</h2>
        <p>Silence %: {{printf "%.2f" .Operational.SilencePct}}</p>
        <p>Overlap %: {{printf "%.2f" .Operational.OverlapPct}}</p>
        <p>Speech rate (wpm):{{range $role, $rate := .Operational.SpeechRateWpm}} {{$role}}={{printf "%.1f" $rate}}{{end}}</p>
        <p>Interruptions:{{range $key, $count := .Operational.Interruptions}} {{$key}}={{$count}}{{end}}</p>
    </section>
    <section>
        <h2>Checklist</h2>
        <table>
            <thead><tr><th>ID</th><th>Status</th><th>Reason</th><th>Evidence</th><th>TS</th></tr></thead>
            <tbody>
            {{- range .Scores.Checklist}}
                <tr><td>{{.ID}}</td><td>{{if .Passed}}✅{{else}}⚠️{{end}}</td><td>{{.Reason}}</td><td>{{.Evidence}}</td><td>{{.TS}}</td></tr>
            {{- else}}
                <tr><td colspan="5">No checklist items</td></tr>
            {{- end}}
            </tbody>
        </table>
    </section>
    <section>
        <h2>Highlights</h2>
        <ul>
        {{- range .Scores.Highlights}}
            <li><strong>{{.Type}}</strong>: {{.Quote}} <em>{{.TS}}</em></li>
        {{- else}}
            <li>No highlights</li>
        {{- end}}
        </ul>
    </section>
    <section>
        <h2>Transcript</h2>
        <table>
            <thead><tr><th>TS</th><th>Speaker</th><th>Text</th></tr></thead>
            <tbody>
            {{- range .Segments}}
                <tr><td>{{.TS}}</td><td>{{.Speaker}}</td><td>{{.Text}}</td></tr>
            {{- else}}
                <tr><td colspan="3">No transcript segments</td></tr>
            {{- end}}
            </tbody>
        </table>
    </section>
</body>
</html>
`))
