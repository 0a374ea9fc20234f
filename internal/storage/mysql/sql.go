package mysql

const upsertPropertySQL = `
INSERT INTO properties
  (reference, title, description, property_type, price, bedrooms, bathrooms, area, plot_area, country, city, images, status)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  title         = VALUES(title),
  description   = VALUES(description),
  property_type = VALUES(property_type),
  price         = VALUES(price),
  bedrooms      = VALUES(bedrooms),
  bathrooms     = VALUES(bathrooms),
  area          = VALUES(area),
  plot_area     = VALUES(plot_area),
  country       = VALUES(country),
  city          = VALUES(city),
  images        = VALUES(images),
  status        = VALUES(status),
  updated_at    = CURRENT_TIMESTAMP
`

const upsertVariantSQL = `
INSERT INTO property_i18n
  (reference, locale, title, description, translated)
VALUES
  (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  title       = VALUES(title),
  description = VALUES(description),
  translated  = VALUES(translated)
`

const insertFailureSQL = `
INSERT INTO import_failures (reference, stage, reason)
VALUES (?, ?, ?)
`

// Joined read used by the admin verification path and the integration
// test. Falls back to the base row when the locale has no variant.
const getPropertySQL = `
SELECT
  p.reference,
  p.title,
  p.description,
  p.property_type,
  p.price,
  p.bedrooms,
  p.bathrooms,
  p.area,
  p.plot_area,
  p.country,
  p.city,
  p.images,
  p.status,
  i.title,
  i.description
FROM properties p
LEFT JOIN property_i18n i
  ON i.reference = p.reference AND i.locale = ?
WHERE p.reference = ?
`
