// internal/template/builtin.go
package template

// Builtin returns the registry of templates shipped with the service.
func Builtin() *Registry {
	birthday := New("birthday").
		AddVariant("ru", Variant{
			Subject: "С Днем Рождения!",
			Text:    "Дорогой {{user.name}},\n\nПоздравляем вас с Днем Рождения! Желаем вам всего самого наилучшего!\n\nС уважением,\n{{appName}}",
			HTML: `
        <h1>С Днем Рождения!</h1>
        <p>Дорогой <strong>{{user.name}}</strong>,</p>
        <p>Поздравляем вас с Днем Рождения! Желаем вам всего самого наилучшего!</p>
        <p>С уважением,<br>{{appName}}</p>
      `,
		}).
		AddVariant("en", Variant{
			Subject: "Happy Birthday!",
			Text:    "Dear {{user.name}},\n\nHappy Birthday! We wish you all the best!\n\nBest regards,\n{{appName}}",
			HTML: `
        <h1>Happy Birthday!</h1>
        <p>Dear <strong>{{user.name}}</strong>,</p>
        <p>Happy Birthday! We wish you all the best!</p>
        <p>Best regards,<br>{{appName}}</p>
      `,
		}).
		AddVariant("es", Variant{
			Subject: "¡Feliz Cumpleaños!",
			Text:    "Estimado/a {{user.name}},\n\n¡Feliz Cumpleaños! ¡Le deseamos todo lo mejor!\n\nSaludos,\n{{appName}}",
			HTML: `
        <h1>¡Feliz Cumpleaños!</h1>
        <p>Estimado/a <strong>{{user.name}}</strong>,</p>
        <p>¡Feliz Cumpleaños! ¡Le deseamos todo lo mejor!</p>
        <p>Saludos,<br>{{appName}}</p>
      `,
		})

	verification := New("verification").
		AddVariant("ru", Variant{
			Subject: "Подтверждение email",
			Text:    "Дорогой {{user.name}},\n\nПожалуйста, подтвердите ваш email, перейдя по ссылке: {{verificationLink}}\n\nС уважением,\n{{appName}}",
			HTML: `
        <h1>Подтверждение email</h1>
        <p>Дорогой <strong>{{user.name}}</strong>,</p>
        <p>Пожалуйста, подтвердите ваш email, перейдя по ссылке:</p>
        <p><a href="{{verificationLink}}">Подтвердить email</a></p>
        <p>С уважением,<br>{{appName}}</p>
      `,
		}).
		AddVariant("en", Variant{
			Subject: "Email Verification",
			Text:    "Dear {{user.name}},\n\nPlease verify your email by clicking the link: {{verificationLink}}\n\nBest regards,\n{{appName}}",
			HTML: `
        <h1>Email Verification</h1>
        <p>Dear <strong>{{user.name}}</strong>,</p>
        <p>Please verify your email by clicking the link:</p>
        <p><a href="{{verificationLink}}">Verify Email</a></p>
        <p>Best regards,<br>{{appName}}</p>
      `,
		}).
		AddVariant("es", Variant{
			Subject: "Verificación de email",
			Text:    "Estimado/a {{user.name}},\n\nPor favor, verifique su email haciendo clic en el enlace: {{verificationLink}}\n\nSaludos,\n{{appName}}",
			HTML: `
        <h1>Verificación de email</h1>
        <p>Estimado/a <strong>{{user.name}}</strong>,</p>
        <p>Por favor, verifique su email haciendo clic en el enlace:</p>
        <p><a href="{{verificationLink}}">Verificar Email</a></p>
        <p>Saludos,<br>{{appName}}</p>
      `,
		})

	return NewRegistry(birthday, verification)
}
