package email

import "html/template"

var templates = template.Must(template.New("email").Parse(`
{{define "layout-start"}}
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background-color: #0F172A;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px 5px 0 0;
        }
        .content {
            background-color: #f9f9f9;
            padding: 30px;
            border-radius: 0 0 5px 5px;
        }
        .button {
            display: inline-block;
            background-color: #F97316;
            color: white !important;
            padding: 12px 30px;
            text-decoration: none;
            border-radius: 5px;
            margin: 20px 0;
        }
        .footer {
            margin-top: 30px;
            font-size: 12px;
            color: #666;
            text-align: center;
        }
        td { padding: 4px 12px 4px 0; }
    </style>
</head>
<body>
{{end}}

{{define "layout-end"}}
    <div class="footer">
        <p>&copy; 2026 DevEx Technologies. All rights reserved.</p>
    </div>
</body>
</html>
{{end}}

{{define "welcome"}}{{template "layout-start"}}
    <div class="header">
        <h1>Welcome, {{.FirstName}}!</h1>
    </div>
    <div class="content">
        <p>Your DevEx Technologies account is ready. Sign in to explore our plans and services.</p>
        <a href="{{.SignInURL}}" class="button" style="color: white !important;">Sign In</a>
        <p style="margin-top: 30px;">If you didn't create an account, you can safely ignore this email.</p>
    </div>
{{template "layout-end"}}{{end}}

{{define "contact"}}{{template "layout-start"}}
    <div class="header">
        <h1>New Contact Enquiry</h1>
    </div>
    <div class="content">
        <table>
            <tr><td><strong>Name</strong></td><td>{{.FirstName}} {{.LastName}}</td></tr>
            <tr><td><strong>Email</strong></td><td>{{.Email}}</td></tr>
            <tr><td><strong>Phone</strong></td><td>{{.Phone}}</td></tr>
        </table>
        <p style="white-space: pre-wrap;">{{.Message}}</p>
    </div>
{{template "layout-end"}}{{end}}

{{define "receipt"}}{{template "layout-start"}}
    <div class="header">
        <h1>Payment Received</h1>
    </div>
    <div class="content">
        <p>Hi {{.Name}}, thank you for your purchase.</p>
        <table>
            <tr><td><strong>Plan</strong></td><td>{{.Plan}}</td></tr>
            <tr><td><strong>Amount</strong></td><td>{{.Amount}}</td></tr>
            <tr><td><strong>Order ID</strong></td><td>{{.OrderID}}</td></tr>
            <tr><td><strong>Payment ID</strong></td><td>{{.PaymentID}}</td></tr>
            <tr><td><strong>Paid at</strong></td><td>{{.PaidAt}}</td></tr>
        </table>
        <a href="{{.URL}}" class="button" style="color: white !important;">View Purchase</a>
    </div>
{{template "layout-end"}}{{end}}
`))
