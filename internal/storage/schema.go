package storage

const postgresSchema = `
CREATE TABLE IF NOT EXISTS news (
  id BIGSERIAL PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT,
  content TEXT,
  link TEXT NOT NULL,
  pub_date TEXT,
  category TEXT,
  image TEXT,
  publisher TEXT,
  tag TEXT NOT NULL,
  summary TEXT,
  is_summarized BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_news_dedup ON news(title, link, tag);
CREATE INDEX IF NOT EXISTS idx_news_tag_created ON news(tag, created_at);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS news (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  description TEXT,
  content TEXT,
  link TEXT NOT NULL,
  pub_date TEXT,
  category TEXT,
  image TEXT,
  publisher TEXT,
  tag TEXT NOT NULL,
  summary TEXT,
  is_summarized BOOLEAN NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_news_dedup ON news(title, link, tag);
CREATE INDEX IF NOT EXISTS idx_news_tag_created ON news(tag, created_at);
`
