package server

// indexTemplate is the portal's single page. Styling deliberately minimal;
// the page only needs to surface session state and the action forms.
const indexTemplate = `<!DOCTYPE html>
<html lang="ja">
<head>
  <meta charset="utf-8">
  <title>{{.AppName}}</title>
</head>
<body>
  <h1>{{.AppName}}</h1>

  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}

  {{if .IsAuthenticated}}{{with .UserInfo}}
    <p>ログイン中: {{.DisplayName}} ({{.Email}})</p>
  {{end}}
    <form method="post" action="/logout"><button type="submit">ログアウト</button></form>
  {{end}}

  <form method="post" action="/summarize">
    <textarea name="text" rows="10" cols="80" placeholder="要約したいテキストを入力してください">{{if .PendingRequest}}{{.PendingRequest.Payload}}{{end}}</textarea>
    <br>
    <button type="submit">要約する</button>
  </form>

  <form method="post" action="/sample"><button type="submit">サンプルテキスト</button></form>

  {{if .PendingRequest}}
    <form method="post" action="/execute-pending"><button type="submit">保留中のリクエストを実行</button></form>
  {{end}}

  {{if .LastSummary}}
    <h2>要約結果</h2>
    <p><strong>入力:</strong> {{.LastSummary.InputSummary}}</p>
    <p><strong>出力:</strong> {{.LastSummary.Output}}</p>
    <form method="post" action="/clear"><button type="submit">クリア</button></form>
  {{end}}
</body>
</html>
`
