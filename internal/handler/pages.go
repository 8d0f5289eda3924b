package handler

// Inline pages for the payment confirmation flow. The machine serves
// these itself so the payer needs nothing but the printed link.

const loadingPage = `<!DOCTYPE html>
<html>
<head>
  <title>Processing Payment</title>
  <meta http-equiv="refresh" content="2;url=/pay/confirm?token=%s">
  <style>
    body { font-family: sans-serif; text-align: center; padding-top: 4em; background: #f4ede4; }
    .spinner { font-size: 3em; }
  </style>
</head>
<body>
  <div class="spinner">&#9749;</div>
  <h2>Processing your payment...</h2>
  <p>Please wait, do not close this page.</p>
</body>
</html>`

const successPage = `<!DOCTYPE html>
<html>
<head>
  <title>Payment Successful</title>
  <style>
    body { font-family: sans-serif; text-align: center; padding-top: 4em; background: #eaf7ea; }
    .check { font-size: 3em; color: #2e7d32; }
  </style>
</head>
<body>
  <div class="check">&#10004;</div>
  <h2>Payment of Rp%d successful!</h2>
  <p>Your coffee is being prepared at the machine.</p>
</body>
</html>`

const failurePage = `<!DOCTYPE html>
<html>
<head>
  <title>Payment Failed</title>
  <style>
    body { font-family: sans-serif; text-align: center; padding-top: 4em; background: #fdecea; }
    .cross { font-size: 3em; color: #c62828; }
  </style>
</head>
<body>
  <div class="cross">&#10008;</div>
  <h2>Payment failed</h2>
  <p>This payment link is invalid, expired, or already used. Please start a new payment at the machine.</p>
</body>
</html>`
