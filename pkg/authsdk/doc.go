/*
Package authsdk is the client SDK for the shopfront authentication service.
It also carries the request, response and error types the server writes, so
both sides share one definition of the wire format.

# SDKClient

SDKClient wraps an http.Client with a cookie jar. The service hands out its
session as two HttpOnly cookies (accessToken and refreshToken), so the jar
is the session: nothing token shaped is exposed to callers.

	client, err := authsdk.NewSDKClient("https://shop.example.com")

	_, err = client.RequestOTP(ctx, authsdk.RequestOTPRequest{Email: email, Purpose: authsdk.PurposeVerify})
	resp, err := client.Signup(ctx, authsdk.SignupRequest{Name: name, Email: email, Password: pw, OTP: code})

	profile, err := client.Profile(ctx)

# Silent refresh

The client's transport is a RefreshTransport. When a request other than
login, signup, refresh or logout comes back 401, it:

 1. joins the refresh already in flight, or starts one
 2. retries the original request once with the cookies now in the jar
 3. on refresh failure returns the original 401 and forces a logout

A burst of requests failing together produces exactly one refresh call.

# SessionStore

SessionStore mirrors the signed-in user for an application: Login, Signup,
Logout, CheckAuth, RefreshToken and the OTP actions each call one endpoint
and update state only after the server confirms. Outcomes are reported to a
Notifier.

	store := authsdk.NewSessionStore(client, nil)
	_ = store.CheckAuth(ctx)
	if u := store.Snapshot().User; u != nil {
		fmt.Println("signed in as", u.Email)
	}

# Password reset

	_ = store.RequestPasswordReset(ctx, email)
	token, err := store.ConfirmPasswordReset(ctx, email, code)
	err = store.ResetPassword(ctx, email, newPassword, token)

The token from ConfirmPasswordReset is single use and expires after ten
minutes.

# Errors

Every non-2xx response is returned as an *APIError. Compare with errors.Is
against the predefined values, which match on status and code:

	if errors.Is(err, authsdk.ErrNotVerified) {
		// prompt for the verification code
	}
*/
package authsdk
