package render

// DefaultTemplateName and DefaultTemplateType describe the seed template.
const (
	DefaultTemplateName = "Default Barangay Certificate (Temporary)"
	DefaultTemplateType = "Certificate of Residency"
)

// DefaultTemplate is seeded when no template exists.
const DefaultTemplate = `
<div style="font-family: Arial, sans-serif; padding: 24px;">
  <div style="text-align:center;">
    {{#logo_url}}<img src="{{logo_url}}" alt="Logo" style="height:80px;" />{{/logo_url}}
    <h2 style="margin:8px 0;">BARANGAY CATARMAN</h2>
    <div>Republic of the Philippines</div>
    <div>Province of Northern Samar</div>
  </div>

  <h3 style="text-align:center; margin-top:24px;">{{certificate_type}}</h3>

  <p style="margin-top:24px;">TO WHOM IT MAY CONCERN:</p>

  <p style="line-height:1.6;">
    This is to certify that <strong>{{full_name}}</strong>, {{age}} years old, {{civil_status}}, is a resident of <strong>{{address}}</strong>.
  </p>

  {{#purpose}}
  <p style="line-height:1.6;">This certificate is being issued for <strong>{{purpose}}</strong>.</p>
  {{/purpose}}

  <p style="margin-top:24px;">Reference No.: <strong>{{reference_number}}</strong></p>

  {{#include_profile_photo}}
  <div style="margin-top:24px;">
    <div style="border:1px solid #ccc; width:140px; height:140px; display:flex; align-items:center; justify-content:center;">
      {{#profile_photo_url}}<img src="{{profile_photo_url}}" alt="Profile" style="width:140px; height:140px; object-fit:cover;" />{{/profile_photo_url}}
      {{^profile_photo_url}}<span style="font-size:12px; color:#666;">PROFILE PHOTO</span>{{/profile_photo_url}}
    </div>
  </div>
  {{/include_profile_photo}}

  <div style="margin-top:64px; text-align:center;">
    <div style="width:240px; border-top:1px solid #000; margin:0 auto;"></div>
    <div style="margin-top:6px;">Punong Barangay</div>
  </div>
</div>
`
